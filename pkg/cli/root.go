package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/zarrenspry/vcd-inventory/pkg/config"
	"github.com/zarrenspry/vcd-inventory/pkg/logging"
	"github.com/zarrenspry/vcd-inventory/pkg/serializer"
)

const name = "vcdinv"

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/zarrenspry/vcd-inventory/pkg/cli.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 2
)

// Execute runs the CLI with the process arguments and exits with the
// matching exit code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().Run(ctx, os.Args)
	code := exitCode(ctx, err)
	if err != nil {
		slog.Error("command failed", "error", err)
	}
	stop()
	os.Exit(code)
}

func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return exitOK
	case ctx.Err() != nil,
		stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded):
		return exitCancelled
	default:
		return exitError
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Dynamic Ansible inventory for vCloud Director",
		Description: `Discovers the virtual machines of a vCloud Director VDC and prints them as an
Ansible inventory. Hosts are filtered and grouped by their metadata.

Without a subcommand vcdinv follows the inventory script contract:
  vcdinv --list
  vcdinv --host web_1`,
		Flags:  globalFlags(),
		Before: setupLogging,
		Action: rootAction,
		Commands: []*cli.Command{
			listCmd(),
			hostCmd(),
			serveCmd(),
			cacheCmd(),
		},
	}
}

// globalFlags are defined on the root command and visible to every
// subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "list",
			Usage: "Print the full inventory (default action)",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Print the variables of a single host",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   config.DefaultPath,
			Usage:   "Inventory source file (YAML or JSON)",
			Sources: cli.EnvVars("VCDINV_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "refresh",
			Usage: "Bypass the cache and overwrite it with a live fetch",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path or ConfigMap URI (cm://namespace/name), default: stdout",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Value:   string(serializer.FormatJSON),
			Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "Output logs in JSON format",
		},
	}
}

// setupLogging installs the default logger on stderr.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := logging.LevelFromEnv()
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	if cmd.Bool("log-json") {
		slog.SetDefault(logging.NewStructuredLogger(os.Stderr, name, version, level))
	} else {
		logging.SetDefaultCLILogger(level)
	}
	return ctx, nil
}

func rootAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unknown command %q", cmd.Args().First())
	}
	hostName := cmd.String("host")
	if cmd.Bool("list") && hostName != "" {
		return fmt.Errorf("--list and --host are mutually exclusive")
	}
	if hostName != "" {
		return runHost(ctx, cmd, hostName)
	}
	return runList(ctx, cmd)
}
