package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot converts a user-supplied corpus location to a local path.
// It accepts file:// URIs and a leading "~/" for the home directory;
// other paths pass through unchanged.
func ResolveRoot(location string) string {
	location = strings.TrimPrefix(location, "file://")

	if location == "~" || strings.HasPrefix(location, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(location, "~"))
		}
	}
	return location
}
