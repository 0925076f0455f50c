//go:build linux

package opencl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

// This file enumerates the installable client drivers (ICDs) registered with the Khronos ICD loader.

const (
	// ICDVendorsEnv is the environment variable used by the Khronos ICD loader to override the directory
	// (or single file) with the vendor ".icd" files.
	ICDVendorsEnv = "OCL_ICD_VENDORS"

	defaultICDVendorsDir = "/etc/OpenCL/vendors"
)

// AvailableDrivers lists the OpenCL vendor drivers registered with the ICD loader, as a map from the driver name
// (the ".icd" file name without extension, e.g.: "nvidia", "intel", "pocl") to the library it points to.
//
// Nvidia drivers are skipped if no Nvidia device files are found, since the driver is often installed in
// machines (containers) without the hardware.
func AvailableDrivers() map[string]string {
	drivers := make(map[string]string)
	for _, icdFile := range icdFiles() {
		name := strings.TrimSuffix(filepath.Base(icdFile), ".icd")
		if isNvidia(name) && !hasNvidiaGPU() {
			klog.V(1).Infof("Skipping OpenCL driver %q (%s): no Nvidia GPU found", name, icdFile)
			continue
		}
		lib, err := readICDFile(icdFile)
		if err != nil {
			klog.Warningf("Failed to read OpenCL ICD file %q: %v", icdFile, err)
			continue
		}
		drivers[name] = lib
	}
	return drivers
}

// icdFiles returns the ".icd" files, following OCL_ICD_VENDORS if set.
func icdFiles() []string {
	vendors := os.Getenv(ICDVendorsEnv)
	if vendors == "" {
		vendors = defaultICDVendorsDir
	}
	info, err := os.Stat(vendors)
	if err != nil {
		klog.V(1).Infof("No OpenCL ICD vendors found in %q: %v", vendors, err)
		return nil
	}
	if !info.IsDir() {
		return []string{vendors}
	}
	files, err := filepath.Glob(filepath.Join(vendors, "*.icd"))
	if err != nil {
		klog.Errorf("Failed to list OpenCL ICD files in %q: %v", vendors, err)
		return nil
	}
	return files
}

// readICDFile returns the library named in the first non-empty line of an ".icd" file.
func readICDFile(icdFile string) (string, error) {
	f, err := os.Open(icdFile)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", scanner.Err()
}

// isNvidia tries to guess that the driver named is Nvidia's.
func isNvidia(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, "NVIDIA") || strings.Contains(upper, "CUDA")
}

var hasNvidiaGPU = sync.OnceValue(func() bool {
	matches, err := filepath.Glob("/dev/nvidia*")
	if err != nil {
		klog.Errorf("Failed to figure out if there is an Nvidia GPU installed while searching for files matching \"/dev/nvidia*\": %v", err)
	}
	return len(matches) > 0
})
