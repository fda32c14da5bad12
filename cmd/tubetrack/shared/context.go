// Package shared holds the context passed to all CLI commands.
package shared

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// ConfigDir is the directory searched for config.yaml.
	ConfigDir string
}
