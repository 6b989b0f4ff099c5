// Where: dlq-reconciler/internal/version/version.go
// What: Version information retrieval.
// Why: Surface the VCS revision the binary was built from.
package version

import (
	"fmt"
	"runtime/debug"
)

// GetVersion returns the short VCS revision from build info, suffixed with
// "(dirty)" when the tree was modified, or "dev" when unavailable.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
