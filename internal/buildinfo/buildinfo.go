// Package buildinfo exposes link-time build metadata and prints the start-up
// banner.
//
// Values are injected with -ldflags, e.g.:
//
//	go build -ldflags "-X github.com/dmitrijs2005/qaforum/internal/buildinfo.Version=v1.2.0" ./cmd/cli
package buildinfo

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the version block to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}

// PrintBanner renders name as ASCII art followed by the build data.
func PrintBanner(w io.Writer, name string) {
	fig := figure.NewFigure(name, "cybermedium", true)
	fmt.Fprintln(w, fig.String())
	PrintBuildData(w)
}
