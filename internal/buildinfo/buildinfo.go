// Package buildinfo carries version metadata injected at build time:
//
//	go build -ldflags "-X github.com/varsilias/persona-proxy/internal/buildinfo.Version=v1.2.0 \
//	  -X github.com/varsilias/persona-proxy/internal/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/varsilias/persona-proxy/internal/buildinfo.BuiltAt=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"runtime"

	"github.com/gosuri/uitable"
)

var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
)

// Fields returns the metadata as it is exposed on /version.
func Fields() map[string]string {
	return map[string]string{
		"version":  Version,
		"commit":   Commit,
		"built_at": BuiltAt,
	}
}

// Text renders the build metadata as an aligned table for the version command.
func Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.Separator = " "
	table.AddRow("version:", Version)
	table.AddRow("commit:", Commit)
	table.AddRow("built at:", BuiltAt)
	table.AddRow("go:", runtime.Version())
	table.AddRow("platform:", runtime.GOOS+"/"+runtime.GOARCH)
	return table.String()
}
