//go:build darwin

package opencl

// AvailableDrivers lists the OpenCL vendor drivers registered with the ICD loader. On darwin OpenCL.framework
// is the only driver.
func AvailableDrivers() map[string]string {
	return map[string]string{"apple": "/System/Library/Frameworks/OpenCL.framework/OpenCL"}
}
