//go:build darwin

package opencl

// This file implements the darwin specific search paths:
//
//	osDefaultLibraryPaths() []string
//	osLibraryNames() []string
//
// Apple's own OpenCL.framework only implements OpenCL 1.2, and some entry points used here are optional
// there. A Khronos ICD loader installed with Homebrew (ocl-icd) is preferred if found.

import (
	"os"
	"path"
	"strings"
)

func osLibraryNames() []string {
	return []string{"libOpenCL.1.dylib", "libOpenCL.dylib", "/System/Library/Frameworks/OpenCL.framework/OpenCL"}
}

// osDefaultLibraryPaths returns DYLD_LIBRARY_PATH, LD_LIBRARY_PATH and the Homebrew library directories.
func osDefaultLibraryPaths() []string {
	var paths []string
	for _, varName := range []string{"DYLD_LIBRARY_PATH", "LD_LIBRARY_PATH"} {
		for _, ldPath := range strings.Split(os.Getenv(varName), string(os.PathListSeparator)) {
			if ldPath == "" || !path.IsAbs(ldPath) {
				// No empty or relative paths.
				continue
			}
			paths = append(paths, ldPath)
		}
	}
	return append(paths, "/opt/homebrew/lib", "/usr/local/lib")
}
