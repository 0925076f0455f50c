// clinfo lists the OpenCL platforms and devices, with their main properties, and the vendor drivers registered
// with the ICD loader.
//
// Examples:
//
//	clinfo --device-type=gpu
//	clinfo --format=json --platform=pocl
//	clinfo drivers
package main

import "k8s.io/klog/v2"

func main() {
	if err := rootCmd.Execute(); err != nil {
		klog.Fatalf("clinfo failed: %+v", err)
	}
}
