// Command facetmap serves and inspects a choropleth facet panel.
package main

import (
	"os"

	"github.com/turtacn/facetmap/internal/config"
	"github.com/turtacn/facetmap/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
	config.Version = version
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
