package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomlx/goopencl/internal/clconfig"
	"github.com/gomlx/goopencl/opencl"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/klog/v2"
)

// property is one named value reported for a platform or device. Values are restricted to the types accepted
// by structpb.NewValue.
type property struct {
	name  string
	value any
}

// query of a property that may not be supported by the platform or device.
type query struct {
	name string
	fn   func() (any, error)
}

// platformInfo holds the properties of a platform and of its devices, in presentation order.
type platformInfo struct {
	properties []property
	devices    [][]property
}

func runQueries(what string, queries []query) []property {
	properties := make([]property, 0, len(queries))
	for _, q := range queries {
		value, err := q.fn()
		if err != nil {
			// Properties of newer OpenCL versions fail on older devices.
			klog.V(1).Infof("%s: failed to query %s: %v", what, q.name, err)
			continue
		}
		properties = append(properties, property{name: q.name, value: normalizeValue(value)})
	}
	return properties
}

// normalizeValue converts value to one of the types accepted by structpb.NewValue.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case string, bool, int, uint32, uint64:
		return v
	case []int:
		values := make([]any, len(v))
		for ii, x := range v {
			values[ii] = x
		}
		return values
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// words splits a space separated list (e.g. extensions) into a list of values.
func words(s string) []any {
	fields := strings.Fields(s)
	values := make([]any, len(fields))
	for ii, field := range fields {
		values[ii] = field
	}
	return values
}

func hex[T ~uint64](value T, err error) (any, error) {
	return fmt.Sprintf("%#x", uint64(value)), err
}

func platformQueries(p *opencl.Platform) []query {
	return []query{
		{"name", func() (any, error) { return p.Name() }},
		{"vendor", func() (any, error) { return p.Vendor() }},
		{"version", func() (any, error) { return p.Version() }},
		{"profile", func() (any, error) { return p.Profile() }},
		{"host_timer_resolution_ns", func() (any, error) { return p.HostTimerResolution() }},
		{"extensions", func() (any, error) {
			extensions, err := p.Extensions()
			return words(extensions), err
		}},
	}
}

func deviceQueries(d *opencl.Device) []query {
	return []query{
		{"name", func() (any, error) { return d.Name() }},
		{"vendor", func() (any, error) { return d.Vendor() }},
		{"type", func() (any, error) { return d.Type() }},
		{"version", func() (any, error) { return d.Version() }},
		{"driver_version", func() (any, error) { return d.DriverVersion() }},
		{"opencl_c_version", func() (any, error) { return d.OpenCLCVersion() }},
		{"profile", func() (any, error) { return d.Profile() }},
		{"available", func() (any, error) { return d.Available() }},
		{"compiler_available", func() (any, error) { return d.CompilerAvailable() }},
		{"max_compute_units", func() (any, error) { return d.MaxComputeUnits() }},
		{"max_clock_frequency_mhz", func() (any, error) { return d.MaxClockFrequency() }},
		{"max_work_group_size", func() (any, error) { return d.MaxWorkGroupSize() }},
		{"max_work_item_sizes", func() (any, error) { return d.MaxWorkItemSizes() }},
		{"global_mem_size", func() (any, error) { return d.GlobalMemSize() }},
		{"global_mem_cache_size", func() (any, error) { return d.GlobalMemCacheSize() }},
		{"local_mem_size", func() (any, error) { return d.LocalMemSize() }},
		{"max_mem_alloc_size", func() (any, error) { return d.MaxMemAllocSize() }},
		{"max_constant_buffer_size", func() (any, error) { return d.MaxConstantBufferSize() }},
		{"mem_base_addr_align_bits", func() (any, error) { return d.MemBaseAddrAlign() }},
		{"address_bits", func() (any, error) { return d.AddressBits() }},
		{"endian_little", func() (any, error) { return d.EndianLittle() }},
		{"image_support", func() (any, error) { return d.ImageSupport() }},
		{"single_fp_config", func() (any, error) { return hex(d.SingleFPConfig()) }},
		{"double_fp_config", func() (any, error) { return hex(d.DoubleFPConfig()) }},
		{"queue_on_host_properties", func() (any, error) { return hex(d.QueueOnHostProperties()) }},
		{"svm_capabilities", func() (any, error) { return hex(d.SVMCapabilities()) }},
		{"profiling_timer_resolution_ns", func() (any, error) { return d.ProfilingTimerResolution() }},
		{"partition_max_sub_devices", func() (any, error) { return d.PartitionMaxSubDevices() }},
		{"built_in_kernels", func() (any, error) {
			kernels, err := d.BuiltInKernels()
			return words(strings.ReplaceAll(kernels, ";", " ")), err
		}},
		{"extensions", func() (any, error) {
			extensions, err := d.Extensions()
			return words(extensions), err
		}},
	}
}

// collectPlatforms queries the platforms and devices selected by the configuration.
func collectPlatforms(cfg clconfig.Config) ([]platformInfo, error) {
	platforms, err := cfg.Platforms()
	if err != nil {
		return nil, err
	}
	infos := make([]platformInfo, 0, len(platforms))
	for _, platform := range platforms {
		info := platformInfo{properties: runQueries(platform.String(), platformQueries(platform))}
		devices, err := platform.Devices(cfg.DeviceType)
		if err != nil {
			return nil, errors.WithMessagef(err, "listing devices of %s", platform)
		}
		for _, device := range devices {
			info.devices = append(info.devices, runQueries(device.String(), deviceQueries(device)))
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func printText(w io.Writer, platforms []platformInfo) {
	fmt.Fprintf(w, "Number of platforms: %d\n", len(platforms))
	for platformIdx, platform := range platforms {
		fmt.Fprintf(w, "\nPlatform #%d\n", platformIdx)
		printProperties(w, "  ", platform.properties)
		fmt.Fprintf(w, "  Number of devices: %d\n", len(platform.devices))
		for deviceIdx, device := range platform.devices {
			fmt.Fprintf(w, "\n  Device #%d\n", deviceIdx)
			printProperties(w, "    ", device)
		}
	}
}

func printProperties(w io.Writer, indent string, properties []property) {
	for _, p := range properties {
		value := p.value
		if list, ok := value.([]any); ok {
			if p.name == "extensions" || p.name == "built_in_kernels" {
				fmt.Fprintf(w, "%s%-32s %d\n", indent, p.name, len(list))
				for _, item := range list {
					fmt.Fprintf(w, "%s  %s\n", indent, item)
				}
				continue
			}
			value = fmt.Sprint(list...)
		}
		fmt.Fprintf(w, "%s%-32s %v\n", indent, p.name, value)
	}
}

func propertiesToMap(properties []property) map[string]any {
	m := make(map[string]any, len(properties))
	for _, p := range properties {
		m[p.name] = p.value
	}
	return m
}

// toStruct converts the collected information to a structpb.Struct, to be serialized as JSON.
func toStruct(platforms []platformInfo) (*structpb.Struct, error) {
	platformList := make([]any, 0, len(platforms))
	for _, platform := range platforms {
		m := propertiesToMap(platform.properties)
		deviceList := make([]any, 0, len(platform.devices))
		for _, device := range platform.devices {
			deviceList = append(deviceList, propertiesToMap(device))
		}
		m["devices"] = deviceList
		platformList = append(platformList, m)
	}
	s, err := structpb.NewStruct(map[string]any{"platforms": platformList})
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert platforms information")
	}
	return s, nil
}

func printJSON(w io.Writer, platforms []platformInfo) error {
	s, err := toStruct(platforms)
	if err != nil {
		return err
	}
	encoded, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode platforms information as JSON")
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
