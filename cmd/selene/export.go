package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SlowSpeedChase/selene-n8n/internal/export"
)

var errExtraArgs = errors.New("expected at most one noteId argument")

// Flag parsing is done by parseExportArgs so that negative note IDs reach
// single-note mode instead of being rejected as unknown shorthand flags.
var exportCmd = &cobra.Command{
	Use:   "export [note-id]",
	Short: "Export processed notes to the vault",
	Long: "Exports every analyzed note that has not been exported yet, or a single note by ID.\n" +
		"Prints a JSON summary on stdout. Usage and configuration errors are printed as JSON on stderr.\n\n" +
		"Flags:\n" +
		"      --dry-run   Show what would be exported without writing\n" +
		"  -c, --config    Path to config file\n" +
		"  -v, --verbose   Enable verbose output",
	DisableFlagParsing: true,
	SilenceErrors:      true,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wantsHelp(args) {
			return cmd.Help()
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runExport(ctx, args, os.Stdout, os.Stderr)
	},
}

// exportArgs is the parsed command line of the export command.
type exportArgs struct {
	noteID     *int64
	dryRun     bool
	verbose    bool
	configPath string
}

func parseExportArgs(args []string) (exportArgs, error) {
	var a exportArgs
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case arg == "--dry-run":
			a.dryRun = true
		case strings.HasPrefix(arg, "--dry-run="):
			v, err := strconv.ParseBool(strings.TrimPrefix(arg, "--dry-run="))
			if err != nil {
				return a, fmt.Errorf("invalid value for --dry-run: %q", arg)
			}
			a.dryRun = v
		case arg == "-v" || arg == "--verbose":
			a.verbose = true
		case arg == "-h" || arg == "--help":
		case arg == "-c" || arg == "--config":
			if i+1 >= len(args) {
				return a, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			a.configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			a.configPath = strings.TrimPrefix(arg, "--config=")
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) > 1 {
		return a, errExtraArgs
	}
	if len(positional) == 1 {
		id, err := export.ParseNoteID(positional[0])
		if err != nil {
			return a, err
		}
		a.noteID = &id
	}
	return a, nil
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// runExport runs one export pass. Usage, configuration and store errors are
// reported as a JSON object on stderr; the pass summary goes to stdout.
func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a, err := parseExportArgs(args)
	if err != nil {
		if errors.Is(err, export.ErrInvalidNoteID) {
			export.WriteJSON(stderr, export.InvalidNoteIDSummary()) //nolint:errcheck
		} else {
			writeExportError(stderr, "Invalid arguments", err)
		}
		return err
	}

	if a.verbose {
		verbose = true
	}
	if a.configPath != "" {
		configPath = a.configPath
	}
	setLogFlags(verbose)
	if err := loadConfig(); err != nil {
		writeExportError(stderr, "Invalid configuration", err)
		return err
	}

	exporter, closeFn, err := openExporter()
	if err != nil {
		writeExportError(stderr, "Export failed", err)
		return err
	}
	defer closeFn()

	var res *export.Result
	if a.dryRun {
		res, err = exporter.DryRun(a.noteID)
	} else {
		res, err = exporter.Run(ctx, a.noteID)
	}
	if err != nil {
		writeExportError(stderr, "Export failed", err)
		return err
	}
	return export.WriteJSON(stdout, res.Summary())
}

func writeExportError(w io.Writer, kind string, err error) {
	export.WriteJSON(w, export.ErrorSummary{ //nolint:errcheck
		Success: false,
		Error:   kind,
		Message: err.Error(),
	})
}
