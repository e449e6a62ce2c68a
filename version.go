package forcebridge

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Set at build time with -ldflags "-X github.com/forcebridge/relayer.<Var>=<value>"
var (
	Version   = "v0.1.0"
	GitRev    = "undefined"
	GitBranch = "undefined"
	BuildDate = "undefined"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	GitRev    string
	GitBranch string
	BuildDate string
	GoVersion string
	Platform  string
}

func GetVersion() BuildInfo {
	return BuildInfo{
		Version:   Version,
		GitRev:    GitRev,
		GitBranch: GitBranch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// PrintVersion writes the build info to w, one field per line
func PrintVersion(w io.Writer) {
	fmt.Fprint(w, GetVersion().String())
}

func (b BuildInfo) rows() [][2]string {
	return [][2]string{
		{"Version", b.Version},
		{"Git revision", b.GitRev},
		{"Git branch", b.GitBranch},
		{"Go version", b.GoVersion},
		{"Built", b.BuildDate},
		{"OS/Arch", b.Platform},
	}
}

func (b BuildInfo) String() string {
	var sb strings.Builder
	for _, row := range b.rows() {
		fmt.Fprintf(&sb, "%-14s%s\n", row[0]+":", row[1])
	}
	return sb.String()
}

// Fields returns the build info as key value pairs for structured logging
func (b BuildInfo) Fields() []interface{} {
	rows := b.rows()
	fields := make([]interface{}, 0, 2*len(rows))
	for _, row := range rows {
		fields = append(fields, row[0], row[1])
	}
	return fields
}
