package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/zarrenspry/vcd-inventory/pkg/config"
	"github.com/zarrenspry/vcd-inventory/pkg/hostvars"
	"github.com/zarrenspry/vcd-inventory/pkg/inventory"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the full inventory",
		Description: `Prints every discovered host grouped by the configured metadata keys, with
per-host variables under _meta.hostvars.

Examples:
  vcdinv list --format yaml
  vcdinv list --output cm://ansible/vcd-inventory`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("list takes no arguments")
			}
			return runList(ctx, cmd)
		},
	}
}

func hostCmd() *cli.Command {
	return &cli.Command{
		Name:      "host",
		Usage:     "Print the variables of a single host",
		ArgsUsage: "NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("host requires exactly one argument: the host name")
			}
			return runHost(ctx, cmd, cmd.Args().First())
		},
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	res, err := generate(ctx, cmd)
	if err != nil {
		return err
	}

	return writeOutput(ctx, cmd, outFormat, res)
}

// runHost prints the variables of hostName, or an empty object when the
// host is not part of the inventory.
func runHost(ctx context.Context, cmd *cli.Command, hostName string) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	res, err := generate(ctx, cmd)
	if err != nil {
		return err
	}

	vars, ok := res.Host(hostName)
	if !ok {
		slog.Debug("host not in inventory", slog.String("host", hostName))
		vars = hostvars.Vars{}
	}

	return writeOutput(ctx, cmd, outFormat, vars)
}

// generate loads the configuration named by the flags and runs the pipeline
// once.
func generate(ctx context.Context, cmd *cli.Command) (*inventory.Result, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	p, err := newPipeline(cfg, cmd.Bool("refresh"))
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.Generate(ctx)
}
