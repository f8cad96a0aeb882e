package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/SlowSpeedChase/selene-n8n/internal/config"
	"github.com/SlowSpeedChase/selene-n8n/internal/database"
	"github.com/SlowSpeedChase/selene-n8n/internal/export"
	"github.com/SlowSpeedChase/selene-n8n/internal/mcpserver"
	"github.com/SlowSpeedChase/selene-n8n/internal/notes"
	"github.com/SlowSpeedChase/selene-n8n/internal/render"
	"github.com/SlowSpeedChase/selene-n8n/internal/server"
	"github.com/SlowSpeedChase/selene-n8n/internal/vault"
	"github.com/SlowSpeedChase/selene-n8n/internal/watch"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "selene",
	Short:   "Export processed notes to an Obsidian vault",
	Long:    "Selene renders enriched notes into Markdown and publishes them into timeline, concept, theme and energy views of an Obsidian vault.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setLogFlags(verbose)

		// Skip config loading for init and version. export parses its own
		// arguments and loads config itself.
		switch cmd.Name() {
		case "init", "version", "export":
			return nil
		}
		return loadConfig()
	},
}

func loadConfig() error {
	path, err := config.ResolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setLogFlags(verbose || cfg.Logging.Level == "DEBUG")
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
}

func setLogFlags(debug bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("selene", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/selene/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your note database and Obsidian vault.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and vault status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return err
		}

		pub, err := openVault()
		if err != nil {
			return err
		}

		fmt.Println("Selene Status")
		fmt.Println("=============")
		fmt.Printf("Database:  %s\n", db.Path())
		fmt.Printf("Vault:     %s\n", filepath.Join(cfg.Vault.Path, pub.Folder()))
		fmt.Println()
		fmt.Printf("Notes:            %d\n", stats.TotalNotes)
		fmt.Printf("Processed:        %d\n", stats.ProcessedNotes)
		fmt.Printf("Analyzed:         %d\n", stats.AnalyzedNotes)
		fmt.Printf("Exported:         %d\n", stats.ExportedNotes)
		fmt.Printf("Pending export:   %d\n", stats.PendingExport)
		fmt.Printf("Export runs:      %d\n", stats.ExportRuns)

		fmt.Println()
		fmt.Println("Vault documents:")
		for _, v := range vault.Views {
			n, err := pub.Count(v)
			if err != nil {
				return fmt.Errorf("counting %s: %w", v, err)
			}
			fmt.Printf("  %-12s %d\n", v, n)
		}
		hubs, err := pub.Hubs()
		if err != nil {
			return fmt.Errorf("listing hubs: %w", err)
		}
		fmt.Printf("  %-12s %d\n", vault.HubDir, len(hubs))

		last, err := db.GetLastExportRun()
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Println()
			fmt.Printf("Last run: %s (%s) %d exported, %d failed at %s\n",
				last.ID, last.Mode, last.ExportedCount, last.FailedCount, last.FinishedAt)
		}
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify [note-id]",
	Short: "Check that every view of exported notes holds the same document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pub, err := openVault()
		if err != nil {
			return err
		}

		var rows []database.ExportableNote
		if len(args) == 1 {
			id, err := export.ParseNoteID(args[0])
			if err != nil {
				return fmt.Errorf("invalid note ID: %s", args[0])
			}
			row, err := db.GetNoteForExport(id)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("note %d not found or not ready for export", id)
			}
			rows = append(rows, *row)
		} else {
			rows, err = db.GetExportedNotes(0)
			if err != nil {
				return err
			}
		}

		if len(rows) == 0 {
			fmt.Println("No exported notes to verify.")
			return nil
		}

		bad := 0
		for _, row := range rows {
			n, err := notes.FromRow(row)
			if err != nil {
				fmt.Printf("  [%d] %s: %v\n", row.ID, row.Title, err)
				bad++
				continue
			}
			rep, err := pub.Verify(render.RoutingFor(n))
			if err != nil {
				return fmt.Errorf("verifying note %d: %w", row.ID, err)
			}
			if rep.Consistent() {
				if verbose {
					fmt.Printf("  [%d] %s: ok\n", row.ID, row.Title)
				}
				continue
			}
			bad++
			fmt.Printf("  [%d] %s: inconsistent\n", row.ID, row.Title)
			for _, v := range rep.Missing {
				fmt.Printf("      missing %s\n", v)
			}
			for _, pl := range rep.Placements {
				if sum, ok := rep.Checksums[pl.View]; ok {
					fmt.Printf("      %s %.12s %s\n", pl.View, sum, pl.Path)
				}
			}
		}

		fmt.Printf("Verified %d note(s), %d inconsistent.\n", len(rows), bad)
		if bad > 0 {
			return errors.New("vault has inconsistent notes; re-export them with `selene export <note-id>`")
		}
		return nil
	},
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local browser for exported notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pub, err := openVault()
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		return server.Serve(db, pub, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to listen on")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Export pending notes whenever the note database changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, closeFn, err := openExporter()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := watch.New(cfg.Database.Path, cfg.Watch.Debounce, func(ctx context.Context) error {
			res, err := exporter.Run(ctx, nil)
			if err != nil {
				return err
			}
			if res.Selected > 0 {
				return export.WriteJSON(os.Stdout, res.Summary())
			}
			return nil
		})
		return w.Run(ctx)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve export and vault tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pub, err := openVault()
		if err != nil {
			return err
		}

		exporter := export.New(db, pub, cfg.Export.BatchLimit)
		return mcpserver.New(db, pub, exporter, version).ServeStdio()
	},
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.Database.Path)
}

func openVault() (*vault.Publisher, error) {
	fs, err := vault.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	return vault.NewPublisher(fs, cfg.Vault.Folder), nil
}

func openExporter() (*export.Exporter, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	pub, err := openVault()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return export.New(db, pub, cfg.Export.BatchLimit), func() { db.Close() }, nil
}
