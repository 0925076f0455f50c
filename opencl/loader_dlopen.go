//go:build linux || darwin

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

// This file implements loadLibrary with dlopen, for the OSes that support it.
//
// Modified version of https://github.com/coreos/pkg/blob/main/dlopen/dlopen.go, licenced with Apache 2.0 license
// https://github.com/coreos/pkg/blob/main/LICENSE

// #cgo linux LDFLAGS: -ldl
/*
#include "cl_api.h"
*/
import "C"
import (
	"os"
	"path"
	"unsafe"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// loadLibrary dlopen's the OpenCL library. If libPath is not an absolute path, the dynamic linker searches for it.
func loadLibrary(libPath string) (handleWrapper dllHandleWrapper, err error) {
	if path.IsAbs(libPath) {
		info, err := os.Stat(libPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %q", libPath)
		}
		if info.IsDir() {
			return nil, errors.Errorf("library path %q is a directory!?", libPath)
		}
	}

	nameC := C.CString(libPath)
	klog.V(2).Infof("trying to load library %s\n", libPath)
	// RTLD_GLOBAL: vendor ICDs loaded by the ICD loader may resolve symbols from it.
	handle := C.dlopen(nameC, C.RTLD_NOW|C.RTLD_GLOBAL)
	cFree(nameC)
	if handle == nil {
		msg := C.GoString(C.dlerror())
		err = errors.Errorf("failed to dynamically load OpenCL library from %q: %q -- check with `ldd %s` in case "+
			"there are missing required libraries.", libPath, msg, libPath)
		klog.V(1).Infof("%v", err)
		return
	}
	klog.V(1).Infof("loaded library %s\n", libPath)
	handleWrapper = &dlopenHandle{
		Handle: handle,
		Name:   libPath,
	}
	return
}

// dlopenHandle represents an open handle to a library (.so or .dylib).
type dlopenHandle struct {
	Handle unsafe.Pointer
	Name   string
}

// LoadAPI resolves the OpenCL entry points.
func (l *dlopenHandle) LoadAPI(api *C.cl_api_table) error {
	C.dlerror()
	missing := C.cl_api_load(l.Handle, api)
	if missing != nil {
		return errors.Errorf("library %q doesn't export the required symbol %q, it is not an OpenCL library or "+
			"it's older than OpenCL 1.2", l.Name, C.GoString(missing))
	}
	return nil
}

// GetSymbolPointer takes a symbol name and returns a pointer to the symbol.
func (l *dlopenHandle) GetSymbolPointer(symbol string) (unsafe.Pointer, error) {
	sym := C.CString(symbol)
	defer cFree(sym)

	C.dlerror()
	p := C.dlsym(l.Handle, sym)
	e := C.dlerror()
	if e != nil {
		return nil, errors.Errorf("error resolving symbol %q: %v", symbol, errors.New(C.GoString(e)))
	}
	return p, nil
}

// Close closes the library handle.
func (l *dlopenHandle) Close() error {
	C.dlerror()
	C.dlclose(l.Handle)
	e := C.dlerror()
	if e != nil {
		return errors.Errorf("error closing %v: %v", l.Name, errors.New(C.GoString(e)))
	}
	return nil
}
