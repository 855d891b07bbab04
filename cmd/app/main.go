package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/catalog"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/profilestore"
	"github.com/starford/ansuz/internal/registry"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := profilestore.New(cfg.Profiles.Path)
	if err != nil {
		return fmt.Errorf("init profile store: %w", err)
	}

	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	if err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	reg := registry.New(registry.WithStore(store))
	return mcpserver.New(store, reg, db).ServeStdio()
}

func openStore(cmd *cli.Command) (*profilestore.Store, error) {
	if dir := cmd.String("dir"); dir != "" {
		return profilestore.New(dir)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return profilestore.New(cfg.Profiles.Path)
}

func listProfiles(_ context.Context, cmd *cli.Command) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	cfg := store.Config()
	if len(cfg.Profiles) == 0 {
		fmt.Println("no profiles")
		return nil
	}

	for _, p := range cfg.Profiles {
		marker := " "
		if cfg.DefaultProfile != nil && *cfg.DefaultProfile == p.Name {
			marker = "*"
		}
		fmt.Printf("%s %-24s usage_id=%-20s %s\n", marker, p.Name, p.UsageID, p.Description)
	}
	return nil
}

func setDefaultProfile(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("profile name is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := store.SetDefaultProfile(name); err != nil {
		return err
	}
	fmt.Printf("default profile set to %q\n", name)
	return nil
}

func deleteProfile(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("profile name is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := store.DeleteProfile(name); err != nil {
		return err
	}
	fmt.Printf("deleted profile %q\n", name)
	return nil
}

func showProfile(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("profile name is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	client, err := store.LoadProfile(name)
	if err != nil {
		return err
	}

	data, err := client.Serialize(false)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func exportProfiles(_ context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("target directory is required")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	// Materialize every stored profile through the registry, then export
	// the lot into the target directory named by model.
	reg := registry.New(registry.WithStore(store))
	for _, id := range reg.UsageIDs() {
		if _, err := reg.Get(id); err != nil {
			return err
		}
	}

	if err := reg.ExportProfiles(target, cmd.Bool("include-secrets")); err != nil {
		return err
	}
	fmt.Printf("exported %d profiles to %s\n", len(reg.UsageIDs()), target)
	return nil
}

func main() {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		}
	}
	dirFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Profile directory (overrides config)",
		}
	}

	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "LLM profile store and registry with an HTTP API, full-text search, and MCP access",
		Action: run,
		Flags:  []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: run,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve profile tools over MCP on stdin/stdout",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "list",
				Usage:  "List stored profiles",
				Action: listProfiles,
				Flags:  []cli.Flag{configFlag(), dirFlag()},
			},
			{
				Name:      "show",
				Usage:     "Print a profile document with secrets redacted",
				ArgsUsage: "<name>",
				Action:    showProfile,
				Flags:     []cli.Flag{configFlag(), dirFlag()},
			},
			{
				Name:      "set-default",
				Usage:     "Mark a profile as the default",
				ArgsUsage: "<name>",
				Action:    setDefaultProfile,
				Flags:     []cli.Flag{configFlag(), dirFlag()},
			},
			{
				Name:      "delete",
				Usage:     "Delete a profile",
				ArgsUsage: "<name>",
				Action:    deleteProfile,
				Flags:     []cli.Flag{configFlag(), dirFlag()},
			},
			{
				Name:      "export",
				Usage:     "Export all profiles into another directory, named by model",
				ArgsUsage: "<target-dir>",
				Action:    exportProfiles,
				Flags: []cli.Flag{configFlag(), dirFlag(),
					&cli.BoolFlag{
						Name:  "include-secrets",
						Usage: "Keep api_key fields in the exported documents",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
