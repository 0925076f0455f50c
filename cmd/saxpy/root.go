package main

import (
	"flag"

	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	flagConfig       string
	flagLibrary      string
	flagPlatform     string
	flagDeviceType   string
	flagDeviceIndex  int
	flagBuildOptions string
	flagN            int
	flagA            float32
	flagTolerance    float32
	flagRepeat       int
)

var rootCmd = &cobra.Command{
	Use:          "saxpy",
	Short:        "Run and verify z = a*x + y on an OpenCL device",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		result, err := runSaxpy(cfg)
		if err != nil {
			return err
		}
		result.print(cmd.OutOrStdout())
		if result.mismatches > 0 {
			return errors.Errorf("%d of %d results out of tolerance %g, first at index %d",
				result.mismatches, cfg.Saxpy.N, cfg.Saxpy.Tolerance, result.firstMismatch)
		}
		return nil
	},
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	defaults := clconfig.Default()
	flags := rootCmd.Flags()
	flags.StringVar(&flagConfig, "config", clconfig.DefaultPath, "TOML configuration file")
	flags.StringVar(&flagLibrary, "library", "", "path of the OpenCL library to use")
	flags.StringVar(&flagPlatform, "platform", "", "use a platform whose name contains this (case-insensitive)")
	flags.StringVar(&flagDeviceType, "device-type", "all", "device type: all, default, cpu, gpu, accelerator or custom")
	flags.IntVar(&flagDeviceIndex, "device-index", 0, "index of the device among the matching ones")
	flags.StringVar(&flagBuildOptions, "build-options", "", "options used to build the kernel, e.g.: -cl-fast-relaxed-math")
	flags.IntVarP(&flagN, "elements", "n", defaults.Saxpy.N, "number of elements")
	flags.Float32VarP(&flagA, "scale", "a", defaults.Saxpy.A, "scalar multiplying x")
	flags.Float32Var(&flagTolerance, "tolerance", defaults.Saxpy.Tolerance, "relative error accepted in the results")
	flags.IntVar(&flagRepeat, "repeat", defaults.Saxpy.Repeat, "number of times to run the kernel")
}

// loadConfig loads the configuration file and applies the flags set explicitly over it.
func loadConfig(cmd *cobra.Command) (clconfig.Config, error) {
	cfg, err := clconfig.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.Library, err = clconfig.ReplaceTildeInDir(flagLibrary)
		if err != nil {
			return cfg, errors.WithMessage(err, "--library")
		}
	}
	if flags.Changed("platform") {
		cfg.Platform = flagPlatform
	}
	if flags.Changed("device-type") {
		cfg.DeviceType, err = clconfig.ParseDeviceType(flagDeviceType)
		if err != nil {
			return cfg, errors.WithMessage(err, "--device-type")
		}
	}
	if flags.Changed("device-index") {
		cfg.DeviceIndex = flagDeviceIndex
	}
	if flags.Changed("build-options") {
		cfg.BuildOptions = flagBuildOptions
	}
	if flags.Changed("elements") {
		cfg.Saxpy.N = flagN
	}
	if flags.Changed("scale") {
		cfg.Saxpy.A = flagA
	}
	if flags.Changed("tolerance") {
		cfg.Saxpy.Tolerance = flagTolerance
	}
	if flags.Changed("repeat") {
		cfg.Saxpy.Repeat = flagRepeat
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
