package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zarrenspry/vcd-inventory/pkg/api"
	"github.com/zarrenspry/vcd-inventory/pkg/config"
	"github.com/zarrenspry/vcd-inventory/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inventory over HTTP",
		Description: `Starts an HTTP server answering inventory requests. Every request regenerates
the inventory; enable cache in the source file to bound the load on vCloud Director.

Routes:
  GET /v1/inventory               full inventory (?format=yaml for YAML)
  GET /v1/inventory/hosts/{name}  variables of one host
  GET /health, /ready, /metrics`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Address to listen on (default: all interfaces)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   server.DefaultConfig().Port,
				Usage:   "Port to listen on",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, cmd.Bool("refresh"))
			if err != nil {
				return err
			}
			defer p.Close()

			scfg := server.DefaultConfig()
			scfg.Address = cmd.String("address")
			scfg.Port = cmd.Int("port")

			h := api.NewHandler(p.source, p.assembler)
			return api.Serve(ctx, h,
				server.WithVersion(version),
				server.WithConfig(scfg),
			)
		},
	}
}
