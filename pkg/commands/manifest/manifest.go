package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v3"

	"github.com/wuxler/rregistry/pkg/cmdhelper"
	"github.com/wuxler/rregistry/pkg/commands/internal/options"
	"github.com/wuxler/rregistry/pkg/distribution"
	"github.com/wuxler/rregistry/pkg/errdefs"
	"github.com/wuxler/rregistry/pkg/kvstore"
	ocispecmanifest "github.com/wuxler/rregistry/pkg/ocispec/manifest"
	"github.com/wuxler/rregistry/pkg/ocispec/name"
	"github.com/wuxler/rregistry/pkg/util/xcontext"
	"github.com/wuxler/rregistry/pkg/util/xio"
)

// New returns a ManifestCommand with default values.
func New() *Command {
	return &Command{
		Backend: options.NewBackendOptions(),
		store:   distribution.NewManifestStore(),
	}
}

// Command groups manifest operations run directly against the storage backend.
type Command struct {
	Backend *options.BackendOptions
	Pretty  bool `json:"pretty,omitempty" yaml:"pretty,omitempty"`

	store *distribution.ManifestStore
}

// ToCLI transforms to a *cli.Command.
func (c *Command) ToCLI() *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Manifest operations against the storage backend",
		UsageText: `rregistry manifest COMMAND [OPTIONS] NAME[:TAG|@DIGEST]

# Show a manifest
$ rregistry manifest get --pretty library/nginx:latest

# Delete a manifest and every tag pointing at it
$ rregistry manifest delete library/nginx@sha256:6d3e...
`,
		Commands: []*cli.Command{
			c.GetCommand().ToCLI(),
			c.ExistsCommand().ToCLI(),
			c.DeleteCommand().ToCLI(),
			c.PutCommand().ToCLI(),
		},
	}
}

// Flags defines the flags related to the current command.
func (c *Command) Flags() []cli.Flag {
	return c.Backend.Flags()
}

// GetCommand returns the get subcommand.
func (c *Command) GetCommand() *GetCommand {
	return &GetCommand{Command: c}
}

// ExistsCommand returns the exists subcommand.
func (c *Command) ExistsCommand() *ExistsCommand {
	return &ExistsCommand{Command: c}
}

// DeleteCommand returns the delete subcommand.
func (c *Command) DeleteCommand() *DeleteCommand {
	return &DeleteCommand{Command: c}
}

// PutCommand returns the put subcommand.
func (c *Command) PutCommand() *PutCommand {
	return &PutCommand{Command: c}
}

// withBackend opens the backend for the duration of fn.
func (c *Command) withBackend(ctx context.Context, fn func(kvstore.Backend) error) error {
	backend, closer, err := c.Backend.Open(ctx)
	if err != nil {
		return err
	}
	defer xio.CloseAndLogError(ctx, closer, "backend")
	return fn(backend)
}

// GetCommand prints the manifest addressed by a tag or a digest.
type GetCommand struct {
	*Command `json:",inline" yaml:",inline"`
}

// ToCLI transforms to a *cli.Command.
func (c *GetCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:            "get",
		Aliases:         []string{"fetch"},
		HideHelpCommand: true,
		Usage:           "Print a manifest",
		UsageText: `rregistry manifest get [OPTIONS] NAME[:TAG|@DIGEST]

# Print a manifest by tag
$ rregistry manifest get hello:latest

# Print a manifest by digest, following its tags
$ rregistry manifest get --pretty hello@sha256:6d3e...
`,
		ArgsUsage: "NAME[:TAG|@DIGEST]",
		Flags:     c.Flags(),
		Before:    cmdhelper.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Flags defines the flags related to the current command.
func (c *GetCommand) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "pretty",
			Usage:       "prettify to output",
			Destination: &c.Pretty,
			Value:       c.Pretty,
		},
	}
	return append(flags, c.Command.Flags()...)
}

// Run is the main function for the current command
func (c *GetCommand) Run(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	repo, reference := name.Split(target)
	return c.withBackend(ctx, func(backend kvstore.Backend) error {
		m, err := c.store.Resolve(ctx, backend, repo, reference)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		var content []byte
		if c.Pretty {
			content, err = cmdhelper.PrettifyJSON(ocispecmanifest.ToOCI(m))
		} else {
			content, err = json.Marshal(ocispecmanifest.ToOCI(m))
		}
		if err != nil {
			return err
		}
		cmdhelper.Fprintf(cmd.Root().Writer, "%s", string(content))
		return nil
	})
}

// ExistsCommand reports whether manifests exist.
type ExistsCommand struct {
	*Command `json:",inline" yaml:",inline"`
}

// ToCLI transforms to a *cli.Command.
func (c *ExistsCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:            "exists",
		Aliases:         []string{"stat"},
		HideHelpCommand: true,
		Usage:           "Check whether manifests exist",
		UsageText: `rregistry manifest exists [OPTIONS] NAME[:TAG|@DIGEST] [NAME[:TAG|@DIGEST]...]

# Print true or false
$ rregistry manifest exists hello:v1

# Check several references, one line each
$ rregistry manifest exists hello:v1 hello@sha256:6d3e...
`,
		ArgsUsage: "NAME[:TAG|@DIGEST]...",
		Flags:     c.Flags(),
		Before:    cmdhelper.BeforeFunc(cmdhelper.MinimumNArgs(1)),
		Action:    c.Run,
	}
}

// Run is the main function for the current command
func (c *ExistsCommand) Run(ctx context.Context, cmd *cli.Command) error {
	targets := cmd.Args().Slice()
	return c.withBackend(ctx, func(backend kvstore.Backend) error {
		for _, target := range targets {
			if err := xcontext.NonBlockingCheck(ctx, "exists", target); err != nil {
				return err
			}
			repo, reference := name.Split(target)
			ok, err := c.store.Exists(ctx, backend, repo, reference)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			if len(targets) == 1 {
				cmdhelper.Fprintf(cmd.Root().Writer, "%t", ok)
				continue
			}
			cmdhelper.Fprintf(cmd.Root().Writer, "%s %t", target, ok)
		}
		return nil
	})
}

// DeleteCommand deletes a manifest by tag or by digest.
type DeleteCommand struct {
	*Command `json:",inline" yaml:",inline"`
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// ToCLI transforms to a *cli.Command.
func (c *DeleteCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"del", "remove", "rm"},
		Usage:   "Delete a manifest, by digest it also removes every tag pointing at it",
		UsageText: `rregistry manifest delete [OPTIONS] NAME[:TAG|@DIGEST]

# Remove a tag, other tags of the same manifest are kept
$ rregistry manifest delete hello:v1

# Remove a manifest and all its tags without prompting
$ rregistry manifest delete --force hello@sha256:6d3e...
`,
		ArgsUsage: "NAME[:TAG|@DIGEST]",
		Flags:     c.Flags(),
		Before:    cmdhelper.BeforeFunc(cmdhelper.ExactArgs(1)),
		Action:    c.Run,
	}
}

// Flags defines the flags related to the current command.
func (c *DeleteCommand) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "force to run, ignore prompt and not found error",
			Destination: &c.Force,
			Value:       c.Force,
		},
	}
	return append(flags, c.Command.Flags()...)
}

// Run is the main function for the current command
func (c *DeleteCommand) Run(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	repo, reference := name.Split(target)
	return c.withBackend(ctx, func(backend kvstore.Backend) error {
		m, err := c.store.Resolve(ctx, backend, repo, reference)
		if err != nil {
			if !errors.Is(err, errdefs.ErrNotFound) {
				return err
			}
			if !c.Force {
				return fmt.Errorf("%s: %w", target, err)
			}
			// aliases of a digest may still exist without a resolvable manifest
			cmdhelper.Fprintf(cmd.Root().Writer, "Missing %q, cleaning up leftovers", target)
		} else {
			cmdhelper.Fprintf(cmd.Root().Writer, `Found %s
  - MediaType: %s
  - Digest   : %s
  - Size     : %d
`, target, m.MediaType, m.Digest(), m.Size())
		}

		if !c.Force {
			label := "Are you sure to remove the tag"
			if name.IsDigest(reference) {
				label = "Are you sure to delete the manifest and all tags associated with it"
			}
			confirmed, err := confirm(label)
			if err != nil || !confirmed {
				return err
			}
		}

		n, err := c.store.Delete(ctx, backend, repo, reference)
		if err != nil {
			return err
		}
		cmdhelper.Fprintf(cmd.Root().Writer, "Deleted %s, %d key(s) removed", target, n)
		return nil
	})
}

func confirm(label string) (bool, error) {
	prompt := &promptui.Prompt{
		Label:     label,
		Default:   "N",
		IsConfirm: true,
	}
	userInput, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return strings.EqualFold(userInput, "y"), nil
}

// PutCommand stores a manifest document under a tag or its digest.
type PutCommand struct {
	*Command `json:",inline" yaml:",inline"`
}

// ToCLI transforms to a *cli.Command.
func (c *PutCommand) ToCLI() *cli.Command {
	return &cli.Command{
		Name:    "put",
		Aliases: []string{"push"},
		Usage:   "Store an OCI image manifest",
		UsageText: `rregistry manifest put [OPTIONS] NAME[:TAG[,TAG][...]|@DIGEST] FILE

# Store a manifest under two tags
$ rregistry manifest put hello:v1,latest manifest.json

# Store a manifest read from stdin under its digest
$ cat manifest.json | rregistry manifest put hello@sha256:6d3e... -
`,
		ArgsUsage: "NAME[:TAG[,TAG][...]|@DIGEST] FILE",
		Flags:     c.Flags(),
		Before:    cmdhelper.BeforeFunc(cmdhelper.ExactArgs(2)), //nolint:mnd // explicitly args number
		Action:    c.Run,
	}
}

// Run is the main function for the current command
func (c *PutCommand) Run(ctx context.Context, cmd *cli.Command) error {
	splits := strings.Split(cmd.Args().First(), ",")
	repo, reference := name.Split(splits[0])
	references := append([]string{reference}, splits[1:]...)
	for _, ref := range references {
		if err := name.ValidateReference(ref); err != nil {
			return err
		}
	}

	file := cmd.Args().Get(1)
	var (
		content []byte
		err     error
	)
	if file == "-" {
		content, err = io.ReadAll(cmd.Root().Reader)
	} else {
		var path string
		if path, err = cmdhelper.ExpandHome(file); err == nil {
			content, err = os.ReadFile(path)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	m, err := ocispecmanifest.Parse(content)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	return c.withBackend(ctx, func(backend kvstore.Backend) error {
		for _, ref := range references {
			if err := xcontext.NonBlockingCheck(ctx, "put", repo+":"+ref); err != nil {
				return err
			}
			dgst, err := c.store.Put(ctx, backend, repo, ref, m)
			if err != nil {
				return fmt.Errorf("%s:%s: %w", repo, ref, err)
			}
			cmdhelper.Fprintf(cmd.Root().Writer, "Stored %s %s -> %s", repo, ref, dgst)
		}
		return nil
	})
}
