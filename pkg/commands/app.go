package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wuxler/rregistry/pkg/commands/internal/options"
	"github.com/wuxler/rregistry/pkg/commands/manifest"
	"github.com/wuxler/rregistry/pkg/commands/server"
)

// NewApp returns the root command of the application.
func NewApp(name string) *cli.Command {
	common := options.NewCommonOptions()
	return &cli.Command{
		Name:                  name,
		Usage:                 "An OCI manifest registry backed by Redis",
		Suggest:               true,
		EnableShellCompletion: true,
		HideVersion:           true,
		HideHelpCommand:       true,
		Flags:                 common.Flags(),
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			return ctx, common.SetupLogger()
		},
		Commands: []*cli.Command{
			NewVersionCommand().ToCLI(),
			server.New().ToCLI(),
			manifest.New().ToCLI(),
		},
	}
}
