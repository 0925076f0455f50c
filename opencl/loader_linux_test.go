package opencl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLibraryPaths(t *testing.T) {
	dir := t.TempDir()
	confDir := filepath.Join(dir, "ld.so.conf.d")
	require.NoError(t, os.Mkdir(confDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ld.so.conf"),
		[]byte("# comment\ninclude ld.so.conf.d/*.conf\n/opt/first/lib\n\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "cuda.conf"),
		[]byte("  /usr/local/cuda/lib64  \n"), 0644))

	paths := loadLibraryPaths([]string{"/from/env"}, filepath.Join(dir, "ld.so.conf"))
	assert.Equal(t, []string{"/from/env", "/usr/local/cuda/lib64", "/opt/first/lib"}, paths)

	// Missing files are ignored.
	paths = loadLibraryPaths(nil, filepath.Join(dir, "missing.conf"))
	assert.Empty(t, paths)
}

func TestAvailableDrivers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pocl.icd"), []byte("\nlibpocl.so.2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intel.icd"), []byte("/opt/intel/libigdrcl.so\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not an icd file"), 0644))
	t.Setenv(ICDVendorsEnv, dir)

	drivers := AvailableDrivers()
	assert.Equal(t, map[string]string{
		"pocl":  "libpocl.so.2",
		"intel": "/opt/intel/libigdrcl.so",
	}, drivers)

	// A single file can be given instead of a directory.
	t.Setenv(ICDVendorsEnv, filepath.Join(dir, "pocl.icd"))
	assert.Equal(t, map[string]string{"pocl": "libpocl.so.2"}, AvailableDrivers())

	t.Setenv(ICDVendorsEnv, filepath.Join(dir, "missing"))
	assert.Empty(t, AvailableDrivers())
}
