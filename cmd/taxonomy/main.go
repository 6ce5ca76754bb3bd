package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/taxonomy/internal"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/storage"
	pkgconfig "github.com/starford/taxonomy/pkg/config"
)

var version = "dev"

// loadConfig reads the config file, applies flag overrides and validates
// the result. A missing default config file leaves the defaults in place.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("driver") {
		cfg.Database.Driver = cmd.String("driver")
	}
	if cmd.IsSet("dsn") {
		cfg.Database.DSN = cmd.String("dsn")
	}
	if cmd.IsSet("table") {
		cfg.Database.Table = cmd.String("table")
	}
	if cmd.IsSet("log-level") {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("watch") {
		cfg.Watch.Path = cmd.String("watch")
	}
	if cmd.IsSet("watch-format") {
		cfg.Watch.Format = cmd.String("watch-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// stderrOptions configures commands whose stdout carries data.
func stderrOptions(cfg *internal.Config) []internal.Option {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	}
}

func loadAction(f codec.Format) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		output := cmd.String("output")
		if output == "" {
			return internal.Load(ctx, os.Stdout, f, stderrOptions(cfg)...)
		}

		var buf bytes.Buffer
		if err := internal.Load(ctx, &buf, f, stderrOptions(cfg)...); err != nil {
			return err
		}
		fs, name, err := storage.ForFile(output)
		if err != nil {
			return err
		}
		return fs.Write(name, buf.Bytes())
	}
}

func storeAction(f codec.Format) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var in io.Reader = os.Stdin
		if input := cmd.String("input"); input != "" {
			fs, name, err := storage.ForFile(input)
			if err != nil {
				return err
			}
			data, err := fs.Read(name)
			if err != nil {
				return err
			}
			in = bytes.NewReader(data)
		}

		run, verb := internal.Store, "stored"
		if cmd.Bool("dry-run") {
			run, verb = internal.Check, "checked"
		}
		opts := stderrOptions(cfg)
		if cmd.Bool("allow-empty") {
			opts = append(opts, internal.WithAllowEmpty())
		}
		res, err := run(ctx, in, f, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %d entries (%d warnings)\n", verb, res.Entries, len(res.Warnings))
		return nil
	}
}

// formatCommands builds one subcommand per document format.
func formatCommands(usage string, flags func() []cli.Flag, action func(codec.Format) cli.ActionFunc) []*cli.Command {
	var cmds []*cli.Command
	for _, f := range codec.Formats() {
		cmds = append(cmds, &cli.Command{
			Name:   string(f),
			Usage:  fmt.Sprintf(usage, f),
			Flags:  flags(),
			Action: action(f),
		})
	}
	return cmds
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, stderrOptions(cfg)...)
}

func main() {
	cmd := &cli.Command{
		Name:    "taxonomy",
		Usage:   "Convert a hierarchical taxonomy between its stored flat records and an editable path-keyed document",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("TAXONOMY_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Record store driver (sqlite3, sqlite or pgx)",
				Sources: cli.EnvVars("TAXONOMY_DB_DRIVER"),
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "Record store data source name",
				Sources: cli.EnvVars("TAXONOMY_DB_DSN"),
			},
			&cli.StringFlag{
				Name:    "table",
				Aliases: []string{"collection"},
				Usage:   "Table holding the taxonomy records",
				Sources: cli.EnvVars("TAXONOMY_DB_TABLE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (DEBUG, INFO, WARN, ERROR)",
				Sources: cli.EnvVars("TAXONOMY_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "load",
				Usage: "Export the stored taxonomy as a document",
				Commands: formatCommands("Write the taxonomy as %s", func() []cli.Flag {
					return []cli.Flag{
						&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write to file instead of stdout"},
					}
				}, loadAction),
			},
			{
				Name:  "store",
				Usage: "Replace the stored taxonomy with a document",
				Commands: formatCommands("Read a %s document and replace every stored record", func() []cli.Flag {
					return []cli.Flag{
						&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Read from file instead of stdin"},
						&cli.BoolFlag{Name: "dry-run", Usage: "Validate and convert without writing"},
						&cli.BoolFlag{Name: "allow-empty", Usage: "Accept a document with no entries, clearing the table"},
					}
				}, storeAction),
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only HTTP API with live store events",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "HTTP port", Sources: cli.EnvVars("TAXONOMY_HTTP_PORT")},
					&cli.StringFlag{Name: "watch", Usage: "Document file to store whenever it changes"},
					&cli.StringFlag{Name: "watch-format", Usage: "Format of the watched document"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only taxonomy tools over MCP on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
