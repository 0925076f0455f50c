// saxpy runs z = a*x + y on an OpenCL device, verifies the results on the host and reports the kernel
// execution time.
//
// The device and the problem size can be set in the configuration file ([saxpy] section) or with flags:
//
//	saxpy --device-type=gpu --elements=1000000 --repeat=10
package main

import "k8s.io/klog/v2"

func main() {
	if err := rootCmd.Execute(); err != nil {
		klog.Fatalf("saxpy failed: %+v", err)
	}
}
