package report

import (
	"fmt"
	"runtime/debug"
)

// ProgramVersion reports this binary's build version, the same way
// elasticproxy/cmd/proxy/version.go's Version() does: it reads
// runtime/debug's embedded VCS settings rather than a hand-maintained
// version constant, so a binary built with `go build` (which stamps
// vcs.revision/vcs.time automatically from a git checkout) reports
// something meaningful without a release process wiring in a version
// string at build time.
func ProgramVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	rev, hasRev := findSetting(bi, "vcs.revision")
	date, hasDate := findSetting(bi, "vcs.time")
	switch {
	case hasRev && hasDate:
		return fmt.Sprintf("date: %s, revision: %s", date, rev)
	case hasRev:
		return fmt.Sprintf("revision: %s", rev)
	case hasDate:
		return fmt.Sprintf("date: %s", date)
	default:
		return bi.Main.Version
	}
}

func findSetting(bi *debug.BuildInfo, key string) (string, bool) {
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}
