package build

import (
	"os"
	"path/filepath"
)

// TempDir joins the provided directory names into a path within the OS
// temporary directory, namespaced per package so that concurrent test runs
// do not collide, and removes any pre-existing directory at that path.
func TempDir(dirs ...string) string {
	path := filepath.Join(append([]string{os.TempDir(), "walletcore-testing"}, dirs...)...)
	err := os.RemoveAll(path)
	if err != nil {
		panic(err)
	}
	return path
}
