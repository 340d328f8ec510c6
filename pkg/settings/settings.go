// Package settings provides build metadata, per-run settings and context
// helpers shared by the qbar commands.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "qbar"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, semantic version and build timestamp of
// the running binary.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of a single invocation, resolved from flags and the
// configuration file.
type Run struct {
	MinLogLevel int8   // zapcore level; -1 is debug
	ConfigFile  string // resolved config path, "" for built-in defaults
	LogFile     string // where logs go while the TUI owns the terminal
	Interactive bool   // the TUI is running
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the settings for a non-interactive CLI run.
func NewCliParams() *Run {
	return &Run{ExitOnError: true}
}

// LogToStderr reports whether logs may be written to stderr. The TUI draws on
// the terminal, so interactive runs log only to a file.
func (r *Run) LogToStderr() bool {
	return !r.Interactive
}
