package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/TotalLag/developer-docs/cmd/sitebuilder/commands"
	"github.com/TotalLag/developer-docs/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitebuilder"),
		kong.Description("Static documentation site generator"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	os.Exit(commands.Execute(ctx, &cli))
}
