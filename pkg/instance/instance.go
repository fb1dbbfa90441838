package instance

import (
	"os"
	"strings"
)

// ID names the running process in logs: an explicit instance id, then the
// platform dyno name, then the hostname.
func ID() string {
	for _, key := range []string{"THERMOLAQ_INSTANCE_ID", "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
