package cmd

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/qbar/pkg/settings"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print qbar version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return nil
		},
	}
}

// buildVersionData collects version details from ldflags and the embedded
// build info.
func buildVersionData() map[string]string {
	version := settings.VersionInformation.BuildVersion
	gitCommit := settings.VersionInformation.Commit
	goVersion := runtime.Version()
	buildOS := runtime.GOOS
	buildArch := runtime.GOARCH

	if info, ok := rdebug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if gitCommit == "unknown" && len(s.Value) >= 7 {
					gitCommit = s.Value[:7]
				}
			case "GOOS":
				buildOS = s.Value
			case "GOARCH":
				buildArch = s.Value
			}
		}
	}

	return map[string]string{
		"Name":      settings.CliBinaryName,
		"Version":   version,
		"GoVersion": goVersion,
		"BuildOS":   buildOS,
		"BuildArch": buildArch,
		"GitCommit": gitCommit,
	}
}

func cliVersionString() string {
	d := buildVersionData()
	return fmt.Sprintf("%s %s (commit %s, %s, %s/%s)", d["Name"], d["Version"], d["GitCommit"], d["GoVersion"], d["BuildOS"], d["BuildArch"])
}
