package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/qmod/pkg"
)

// baseConfig is the base name, without extension, of the configuration
// files.
const baseConfig = "config"

var (
	debugBinary = regexp.MustCompile(`^__debug_bin\d+$`) // dlv default output
	leadingDots = regexp.MustCompile(`^\.+`)
)

// basePrefix returns the name of the per-user config and cache directories:
// the base name of the executable without extension. The dlv debugger's
// default output name maps to [pkg.Name] and leading dots are removed.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = debugBinary.ReplaceAllString(id, pkg.Name)
		id = leadingDots.ReplaceAllString(id, "")

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir returns dir() joined with [basePrefix]. If dir fails, the hidden
// directory fallback under the home directory is used, then the working
// directory.
func userDir(dir func() (string, error), fallback string) string {
	base, err := dir()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = filepath.Join(home, fallback)
		} else if base, err = os.Getwd(); err != nil {
			base = "."
		}
	}

	return filepath.Join(base, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the cache directory path used for transient files.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}
