// Package clconfig holds the configuration shared by the commands: which OpenCL library, platform and device to
// use, and how to build programs. It's loaded from a TOML file, and can be overridden by flags.
package clconfig

import (
	"os"
	"os/user"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomlx/goopencl/opencl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultPath of the configuration file. It's fine if it doesn't exist.
const DefaultPath = "~/.config/goopencl/config.toml"

// Config selects the OpenCL device and the parameters of the commands.
type Config struct {
	// Library is the path of the OpenCL library to load. If empty, opencl.Load searches for the ICD loader.
	Library string

	// Platform is a case-insensitive substring of the platform name. Empty matches any platform.
	Platform string

	// DeviceType of the devices to use.
	DeviceType opencl.DeviceType

	// DeviceIndex is the index of the device among the matching ones.
	DeviceIndex int

	// BuildOptions passed when building programs.
	BuildOptions string

	Saxpy SaxpyConfig
}

// SaxpyConfig holds the parameters of the saxpy command.
type SaxpyConfig struct {
	// N is the number of elements.
	N int

	// A is the scalar in z = a*x + y.
	A float32

	// Tolerance is the relative error accepted when verifying the results.
	Tolerance float32

	// Repeat the kernel execution, to measure the average duration.
	Repeat int
}

// Default returns the configuration used when there is no configuration file.
func Default() Config {
	return Config{
		DeviceType: opencl.DeviceTypeAll,
		Saxpy: SaxpyConfig{
			N:         1000,
			A:         300,
			Tolerance: 1e-6,
			Repeat:    1,
		},
	}
}

type fileConfig struct {
	Library      string `toml:"library"`
	Platform     string `toml:"platform"`
	DeviceType   string `toml:"device_type"`
	DeviceIndex  int    `toml:"device_index"`
	BuildOptions string `toml:"build_options"`
	Saxpy        struct {
		N         int     `toml:"n"`
		A         float32 `toml:"a"`
		Tolerance float32 `toml:"tolerance"`
		Repeat    int     `toml:"repeat"`
	} `toml:"saxpy"`
}

// Load the configuration from the TOML file at path, applying it over the defaults.
// If path is DefaultPath and the file doesn't exist, it returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	filePath, err := ReplaceTildeInDir(path)
	if err != nil {
		return Config{}, err
	}
	if path == DefaultPath {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			klog.V(1).Infof("no configuration file in %q, using defaults", filePath)
			return cfg, nil
		}
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(filePath, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to load configuration from %q", filePath)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		klog.Warningf("unknown keys in configuration %q: %v", filePath, undecoded)
	}

	if meta.IsDefined("library") {
		cfg.Library, err = ReplaceTildeInDir(strings.TrimSpace(raw.Library))
		if err != nil {
			return Config{}, errors.WithMessagef(err, "configuration %q", filePath)
		}
	}
	if meta.IsDefined("platform") {
		cfg.Platform = strings.TrimSpace(raw.Platform)
	}
	if meta.IsDefined("device_type") {
		cfg.DeviceType, err = ParseDeviceType(raw.DeviceType)
		if err != nil {
			return Config{}, errors.WithMessagef(err, "configuration %q", filePath)
		}
	}
	if meta.IsDefined("device_index") {
		cfg.DeviceIndex = raw.DeviceIndex
	}
	if meta.IsDefined("build_options") {
		cfg.BuildOptions = strings.TrimSpace(raw.BuildOptions)
	}
	if meta.IsDefined("saxpy", "n") {
		cfg.Saxpy.N = raw.Saxpy.N
	}
	if meta.IsDefined("saxpy", "a") {
		cfg.Saxpy.A = raw.Saxpy.A
	}
	if meta.IsDefined("saxpy", "tolerance") {
		cfg.Saxpy.Tolerance = raw.Saxpy.Tolerance
	}
	if meta.IsDefined("saxpy", "repeat") {
		cfg.Saxpy.Repeat = raw.Saxpy.Repeat
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.WithMessagef(err, "configuration %q", filePath)
	}
	return cfg, nil
}

// Validate the configuration values.
func (cfg Config) Validate() error {
	if cfg.DeviceIndex < 0 {
		return errors.Errorf("device_index must be >= 0, got %d", cfg.DeviceIndex)
	}
	if cfg.Saxpy.N <= 0 {
		return errors.Errorf("saxpy.n must be > 0, got %d", cfg.Saxpy.N)
	}
	if cfg.Saxpy.Tolerance < 0 {
		return errors.Errorf("saxpy.tolerance must be >= 0, got %g", cfg.Saxpy.Tolerance)
	}
	if cfg.Saxpy.Repeat <= 0 {
		return errors.Errorf("saxpy.repeat must be > 0, got %d", cfg.Saxpy.Repeat)
	}
	return nil
}

var deviceTypeNames = map[string]opencl.DeviceType{
	"all":         opencl.DeviceTypeAll,
	"default":     opencl.DeviceTypeDefault,
	"cpu":         opencl.DeviceTypeCPU,
	"gpu":         opencl.DeviceTypeGPU,
	"accelerator": opencl.DeviceTypeAccelerator,
	"custom":      opencl.DeviceTypeCustom,
}

// ParseDeviceType parses a device type name (all, default, cpu, gpu, accelerator or custom), or a "|" separated
// combination of them.
func ParseDeviceType(name string) (opencl.DeviceType, error) {
	var deviceType opencl.DeviceType
	for _, part := range strings.Split(name, "|") {
		part = strings.ToLower(strings.TrimSpace(part))
		value, found := deviceTypeNames[part]
		if !found {
			return 0, errors.Errorf("unknown device type %q, valid values are all, default, cpu, gpu, accelerator "+
				"and custom", part)
		}
		deviceType |= value
	}
	return deviceType, nil
}

// Runtime loads the configured OpenCL library, or the default one.
func (cfg Config) Runtime() (*opencl.Runtime, error) {
	if cfg.Library != "" {
		return opencl.LoadFrom(cfg.Library)
	}
	return opencl.Load()
}

// Platforms returns the platforms of the runtime matching the Platform filter.
func (cfg Config) Platforms() ([]*opencl.Platform, error) {
	rt, err := cfg.Runtime()
	if err != nil {
		return nil, err
	}
	platforms, err := rt.Platforms()
	if err != nil {
		return nil, err
	}
	if cfg.Platform == "" {
		return platforms, nil
	}
	filter := strings.ToLower(cfg.Platform)
	matching := make([]*opencl.Platform, 0, len(platforms))
	for _, platform := range platforms {
		name, err := platform.Name()
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(name), filter) {
			matching = append(matching, platform)
		}
	}
	return matching, nil
}

// Devices returns the devices of the configured type in the matching platforms.
func (cfg Config) Devices() ([]*opencl.Device, error) {
	platforms, err := cfg.Platforms()
	if err != nil {
		return nil, err
	}
	var devices []*opencl.Device
	for _, platform := range platforms {
		platformDevices, err := platform.Devices(cfg.DeviceType)
		if err != nil {
			return nil, err
		}
		devices = append(devices, platformDevices...)
	}
	return devices, nil
}

// Device returns the configured device: the one at DeviceIndex among Devices.
func (cfg Config) Device() (*opencl.Device, error) {
	devices, err := cfg.Devices()
	if err != nil {
		return nil, err
	}
	if cfg.DeviceIndex >= len(devices) {
		return nil, errors.WithMessagef(opencl.ErrDeviceNotFound, "device #%d of type %s (platform filter %q) "+
			"not found, %d matching device(s)", cfg.DeviceIndex, cfg.DeviceType, cfg.Platform, len(devices))
	}
	return devices[cfg.DeviceIndex], nil
}

// ReplaceTildeInDir by the user's home directory. Returns dir if it doesn't start with "~".
//
// It returns an error if `dir` has an unknown user (e.g: `~unknown/...`)
func ReplaceTildeInDir(dir string) (string, error) {
	if len(dir) == 0 || dir[0] != '~' {
		return dir, nil
	}
	var userName string
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		sepIdx := strings.IndexRune(dir, '/')
		if sepIdx == -1 {
			userName = dir[1:]
		} else {
			userName = dir[1:sepIdx]
		}
	}
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for user in path %q", dir)
	}
	return path.Join(usr.HomeDir, dir[1+len(userName):]), nil
}
