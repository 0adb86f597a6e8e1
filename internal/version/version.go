package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X".
var (
	Version  string
	Revision string
)

const devVersion = "dev"

type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information. When no revision was set at build time,
// the vcs revision stamped into the binary is used.
func Get() Info {
	info := Info{
		Version:   Version,
		Revision:  Revision,
		GoVersion: runtime.Version(),
	}

	if info.Version == "" {
		info.Version = devVersion
	}

	if info.Revision == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Revision = s.Value
				}
			}
		}
	}

	return info
}
