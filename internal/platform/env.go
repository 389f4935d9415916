package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingEnv indicates the path environment contract is unmet.
var ErrMissingEnv = errors.New("required environment variable not set")

// Environment variable names of the path contract. All must be
// pre-resolved before the core starts.
const (
	EnvInstallRoot = "BENCHTOP_ROOT"
	EnvLibraryRoot = "BENCHTOP_LIB"
	EnvCacheHome   = "XDG_CACHE_HOME"
	EnvConfigHome  = "XDG_CONFIG_HOME"
	EnvDataHome    = "XDG_DATA_HOME"
	EnvBinHome     = "XDG_BIN_HOME"
)

// Paths is the resolved path contract for one run.
type Paths struct {
	InstallRoot string
	LibraryRoot string
	CacheDir    string
	ConfigDir   string
	DataDir     string
	BinDir      string
}

// PathsFromEnv resolves the contract from the process environment.
// Every absent variable is named in the error; the caller treats the
// failure as a Fatal precondition, checked once at entry.
func PathsFromEnv() (*Paths, error) {
	var missing []string
	get := func(name string) string {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	p := &Paths{
		InstallRoot: get(EnvInstallRoot),
		LibraryRoot: get(EnvLibraryRoot),
		CacheDir:    get(EnvCacheHome),
		ConfigDir:   get(EnvConfigHome),
		DataDir:     get(EnvDataHome),
		BinDir:      get(EnvBinHome),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return p, nil
}
