package corpus

import "strings"

// apps maps symbolic app names to shell paths.
var apps = map[string]string{
	"projects":  "/apps/projects",
	"workbench": "/apps/projects",
	"notes":     "/apps/notes",
	"resume":    "/apps/resume",
	"news":      "/apps/news",
	"network":   "/apps/network",
	"terminal":  "/apps/terminal",
	"desktop":   "/desktop",
}

// AppNames lists the advertised app targets in display order.
var AppNames = []string{"projects", "notes", "resume", "news", "network", "desktop"}

// ResolveApp returns the shell path of a case-insensitive app name.
func ResolveApp(name string) (string, bool) {
	href, ok := apps[strings.ToLower(strings.TrimSpace(name))]
	return href, ok
}
