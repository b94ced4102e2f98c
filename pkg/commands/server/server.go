package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wuxler/rregistry/pkg/appinfo"
	"github.com/wuxler/rregistry/pkg/cmdhelper"
	"github.com/wuxler/rregistry/pkg/commands/internal/options"
	"github.com/wuxler/rregistry/pkg/registryhttp"
	"github.com/wuxler/rregistry/pkg/util/xio"
	"github.com/wuxler/rregistry/pkg/xlog"
)

// New returns a serve command with default values.
func New() *Command {
	return &Command{
		ServerOptions:  options.NewServerOptions(),
		BackendOptions: options.NewBackendOptions(),
	}
}

// Command is a command to start the registry server.
type Command struct {
	ServerOptions  *options.ServerOptions
	BackendOptions *options.BackendOptions

	// ready receives the listener address once it is bound.
	ready chan net.Addr
}

// ToCLI transforms to a *cli.Command.
func (c *Command) ToCLI() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "srv"},
		Usage:   "Start the registry server",
		UsageText: `rregistry serve [OPTIONS]

# Start the server on 127.0.0.1:8080 backed by a local redis
$ rregistry serve

# Start the server on all interfaces with a remote redis
$ rregistry serve --host 0.0.0.0 --redis-url redis://:secret@redis.internal:6379/1

# Start the server without redis, manifests are lost on exit
$ rregistry serve --backend memory
`,
		Flags:  c.Flags(),
		Before: cmdhelper.BeforeFunc(cmdhelper.NoArgs()),
		Action: c.Run,
	}
}

// Flags defines the flags related to the current command.
func (c *Command) Flags() []cli.Flag {
	flags := []cli.Flag{}
	flags = append(flags, c.ServerOptions.Flags()...)
	flags = append(flags, c.BackendOptions.Flags()...)
	return flags
}

// Run is the main function for the current command
func (c *Command) Run(ctx context.Context, cmd *cli.Command) error {
	backend, closer, err := c.BackendOptions.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", c.BackendOptions.Backend, err)
	}
	defer xio.CloseAndLogError(ctx, closer, "backend")

	address := c.ServerOptions.Address()
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", address)
	if err != nil {
		return err
	}
	xlog.C(ctx).Info("Starting server", "address", listener.Addr().String(),
		"backend", c.BackendOptions.Backend, "version", appinfo.ShortVersion())

	gin.SetMode(gin.ReleaseMode)
	registry := registryhttp.New(backend, registryhttp.WithMaxManifestSize(c.ServerOptions.MaxManifestSize))
	srv := &http.Server{
		Handler:           registry.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.ServerOptions.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			xlog.C(ctx).Error("Server shutdown failed", "error", err)
			return err
		}
		return nil
	})

	cmdhelper.Fprintf(cmd.Root().Writer, "Server started at http://%s", listener.Addr())
	cmdhelper.Fprintf(cmd.Root().Writer, "Press Ctrl+C to stop the server")
	if c.ready != nil {
		c.ready <- listener.Addr()
	}

	if err := g.Wait(); err != nil {
		return err
	}
	xlog.C(ctx).Info("Server stopped")
	return nil
}
