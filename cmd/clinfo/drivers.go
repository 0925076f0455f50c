package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gomlx/goopencl/opencl"
	"github.com/spf13/cobra"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the OpenCL libraries found and the vendor drivers registered with the ICD loader",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		libraries := opencl.AvailableLibraries()
		fmt.Fprintf(out, "OpenCL libraries (%s):\n", opencl.LibraryPathsEnv)
		if len(libraries) == 0 {
			fmt.Fprintln(out, "\t(none found)")
		}
		for _, library := range libraries {
			fmt.Fprintf(out, "\t%s\n", library)
		}

		drivers := opencl.AvailableDrivers()
		fmt.Fprintln(out, "Vendor drivers:")
		if len(drivers) == 0 {
			fmt.Fprintln(out, "\t(none found)")
		}
		for _, name := range slices.Sorted(maps.Keys(drivers)) {
			fmt.Fprintf(out, "\t%-16s %s\n", name, drivers[name])
		}
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
