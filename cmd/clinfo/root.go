package main

import (
	"flag"

	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	flagConfig     string
	flagFormat     string
	flagDeviceType string
	flagPlatform   string
	flagLibrary    string
)

var rootCmd = &cobra.Command{
	Use:   "clinfo",
	Short: "List OpenCL platforms and devices",
	Long: `clinfo lists the OpenCL platforms and devices available, and their main properties.

The OpenCL library, platform and device type can be selected in the configuration file
(by default ` + clconfig.DefaultPath + `) or with flags, which take precedence.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		platforms, err := collectPlatforms(cfg)
		if err != nil {
			return err
		}
		switch flagFormat {
		case "text":
			printText(cmd.OutOrStdout(), platforms)
			return nil
		case "json":
			return printJSON(cmd.OutOrStdout(), platforms)
		default:
			return errors.Errorf("unknown --format=%q, valid values are text and json", flagFormat)
		}
	},
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", clconfig.DefaultPath, "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLibrary, "library", "",
		"path of the OpenCL library to use, instead of searching for the ICD loader")
	rootCmd.Flags().StringVar(&flagFormat, "format", "text", "output format: text or json")
	rootCmd.Flags().StringVar(&flagDeviceType, "device-type", "all",
		"device types to list: all, default, cpu, gpu, accelerator or custom, or a combination like \"cpu|gpu\"")
	rootCmd.Flags().StringVar(&flagPlatform, "platform", "",
		"only list platforms whose name contains this (case-insensitive)")
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
	klog.V(1).Infof("configuration: %+v", cfg)
	return cfg, nil
}
