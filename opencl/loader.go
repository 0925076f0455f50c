/*
 *	Copyright 2024 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package opencl

/*
#include "cl_api.h"
*/
import "C"
import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// This file holds common definitions for the different implementations of the loader (linux, darwin).

const (
	// LibraryPathsEnv is the name of the environment variable that define the search paths for the OpenCL
	// ICD loader library.
	LibraryPathsEnv = "OPENCL_LIBRARY_PATH"
)

var (
	// librarySearchPaths is set during initialization by the per-OS implementations (loader_<os>.go files).
	//
	// The loader is searched in the OPENCL_LIBRARY_PATH directory -- or directories, if it is a ":" separated list.
	// If it is not set it will search the standard libraries directories of the system (in linux in
	// LD_LIBRARY_PATH and /etc/ld.so.conf file).
	librarySearchPaths []string

	// loadedRuntimes caches the runtimes already loaded, by path. Protected by muRuntimes.
	loadedRuntimes = make(map[string]*Runtime)
	defaultRuntime *Runtime
	muRuntimes     sync.Mutex
)

// dllHandleWrapper encapsulates a handle to the loaded library and should provide a minimal interface to
// resolve the OpenCL API table and to close the library.
//
// It is created with loadLibrary (OS specific).
type dllHandleWrapper interface {
	// LoadAPI resolves all OpenCL entry points into api.
	LoadAPI(api *C.cl_api_table) error

	// GetSymbolPointer returns the address of the symbol, or an error if it's not exported.
	GetSymbolPointer(symbol string) (unsafe.Pointer, error)

	// Close handle, after which the Runtime is no longer valid.
	Close() error
}

func init() {
	clPaths, found := os.LookupEnv(LibraryPathsEnv)
	if !found {
		librarySearchPaths = osDefaultLibraryPaths()
	} else {
		librarySearchPaths = slices.DeleteFunc(strings.Split(clPaths, ":"), func(p string) bool {
			return p == "" // Remove empty paths.
		})
	}
}

// Runtime represents a loaded OpenCL ICD loader (or a vendor library used directly), with its table of
// entry points.
//
// Runtimes are singletons per path and cached: Load and LoadFrom return the same Runtime for the same library.
type Runtime struct {
	path      string
	api       *C.cl_api_table
	dllHandle dllHandleWrapper

	// arenaPools reuses C-allocated buffers for info queries and event wait lists.
	arenaPools *arenaPools
}

// newRuntime resolves the API table from the loaded library.
func newRuntime(libPath string, handle dllHandleWrapper) (*Runtime, error) {
	rt := &Runtime{
		path:       libPath,
		api:        cMalloc[C.cl_api_table](),
		dllHandle:  handle,
		arenaPools: newArenaPools(),
	}
	if err := handle.LoadAPI(rt.api); err != nil {
		cFree(rt.api)
		return nil, errors.WithMessagef(err, "failed to resolve OpenCL entry points from %q", libPath)
	}
	return rt, nil
}

// Path of the loaded library.
func (rt *Runtime) Path() string {
	return rt.path
}

// String implements fmt.Stringer.
func (rt *Runtime) String() string {
	return fmt.Sprintf("OpenCL runtime(%q)", rt.path)
}

// HasEntryPoint returns whether the library exports the given OpenCL function (e.g.: "clSVMAlloc").
//
// Entry points newer than OpenCL 1.2 are optional, and calling a missing one returns an error with
// code ErrFunctionNotAvailable.
func (rt *Runtime) HasEntryPoint(name string) bool {
	ptr, err := rt.dllHandle.GetSymbolPointer(name)
	return err == nil && ptr != nil
}

// Load returns the default OpenCL runtime, loading it if needed.
//
// The ICD loader is searched in the OPENCL_LIBRARY_PATH directory -- or directories, if it is a ":" separated list.
// If it is not set, it will search the standard library directories of the system. As a last resort it lets
// the dynamic linker find it by its name.
//
// It is safe to call from different goroutines, and it is cached: later calls return the same Runtime.
func Load() (*Runtime, error) {
	muRuntimes.Lock()
	defer muRuntimes.Unlock()
	if defaultRuntime != nil {
		return defaultRuntime, nil
	}

	var errs []string
	for _, candidate := range candidateLibraries() {
		rt, err := loadRuntimeLocked(candidate)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		defaultRuntime = rt
		return rt, nil
	}
	return nil, errors.Errorf("OpenCL library (one of %v) not found or failed to load, searched in %v (set %s to "+
		"an specific path(s) to search): %s", osLibraryNames(), librarySearchPaths, LibraryPathsEnv,
		strings.Join(errs, "; "))
}

// LoadFrom loads the OpenCL runtime from the given library path.
//
// It can be used to bypass the ICD loader and use a vendor library directly. Runtimes are cached by path.
func LoadFrom(libPath string) (*Runtime, error) {
	muRuntimes.Lock()
	defer muRuntimes.Unlock()
	return loadRuntimeLocked(libPath)
}

// loadRuntimeLocked must be called with muRuntimes locked.
func loadRuntimeLocked(libPath string) (*Runtime, error) {
	if rt, found := loadedRuntimes[libPath]; found {
		return rt, nil
	}
	klog.V(1).Infof("attempting to load OpenCL library from %s", libPath)
	handle, err := loadLibrary(libPath)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load OpenCL library %q", libPath)
	}
	rt, err := newRuntime(libPath, handle)
	if err != nil {
		if err2 := handle.Close(); err2 != nil {
			klog.Warningf("Failed to close dynamic library %q: %v", libPath, err2)
		}
		return nil, err
	}
	loadedRuntimes[libPath] = rt
	return rt, nil
}

// candidateLibraries returns the full paths of the libraries found in librarySearchPaths, followed by the bare
// library names (resolved by the dynamic linker).
func candidateLibraries() []string {
	candidates := AvailableLibraries()
	return append(candidates, osLibraryNames()...)
}

// AvailableLibraries searches for OpenCL libraries (the ICD loader) in the search paths, and returns their paths
// in order of preference.
//
// It doesn't try to load them, see Load for that.
func AvailableLibraries() []string {
	var found []string
	seen := make(map[string]bool)
	for _, dir := range librarySearchPaths {
		for _, name := range osLibraryNames() {
			if path.IsAbs(name) {
				continue
			}
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
				if seen[resolved] {
					continue
				}
				seen[resolved] = true
			}
			found = append(found, candidate)
		}
	}
	return found
}

// defaultRuntimeOrError returns the default runtime, for functions that are not called from an object that already
// holds one.
func defaultRuntimeOrError() (*Runtime, error) {
	rt, err := Load()
	if err != nil {
		return nil, errors.WithMessage(err, "OpenCL not available")
	}
	return rt, nil
}
