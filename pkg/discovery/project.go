package discovery

import "strings"

// DecodeProjectName extracts a project name from a Claude Code projects
// subdirectory. Directory names encode the working directory path as
// dash-joined components (e.g. "-home-user-code-my-app"); when the name has
// more than three parts the last two are taken as the project name, which
// keeps dashed project names like "my-app" intact. Short names pass through
// unchanged.
func DecodeProjectName(dirname string) string {
	parts := strings.Split(dirname, "-")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-2:], "-")
	}
	return dirname
}
