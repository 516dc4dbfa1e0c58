// Command revistactl is the operator CLI for Revista: it applies
// migrations, inspects the category hierarchy and mints access tokens for
// local development.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"revista/internal/config"
)

// CLI is the top-level command structure for revistactl.
type CLI struct {
	Debug bool `env:"REVISTA_DEBUG" help:"Enable debug logging."`

	Migrate    MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Categories struct {
		Tree TreeCmd `cmd:"" help:"Print the category forest as an indented tree."`
		Flat FlatCmd `cmd:"" help:"Print parent picker entries as depth, name and id."`
	} `cmd:"" help:"Inspect the category hierarchy."`
	Token TokenCmd `cmd:"" help:"Mint an access token signed with SUPABASE_JWT_SECRET."`
	Cache struct {
		Log CacheLogCmd `cmd:"" help:"Show recent page cache invalidations."`
	} `cmd:"" help:"Inspect the page cache."`
}

func main() {
	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("revistactl"),
		kong.Description("Operator tools for the Revista magazine."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "revistactl: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogger(cli.Debug)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "revistactl: %v\n", err)
		os.Exit(1)
	}
	ctx.Bind(cfg)
	ctx.BindTo(os.Stdout, (*io.Writer)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
