package options

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wuxler/rregistry/pkg/registryhttp"
)

const (
	// ServerFlagCategory is the category of the server flags.
	ServerFlagCategory = "[Server]"

	// DefaultServerPort is the default port for the server to listen on.
	DefaultServerPort int64 = 8080

	// DefaultServerHost is the default host for the server to listen on.
	DefaultServerHost = "127.0.0.1"

	// DefaultShutdownTimeout bounds the graceful shutdown of the server.
	DefaultShutdownTimeout = 5 * time.Second
)

// NewServerOptions returns a new *ServerOptions with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		Port:            DefaultServerPort,
		Host:            DefaultServerHost,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxManifestSize: registryhttp.DefaultMaxManifestSize,
	}
}

// ServerOptions defines the options for the server.
type ServerOptions struct {
	// Port is the port for the server to listen on.
	Port int64

	// Host is the host for the server to listen on.
	Host string

	// ShutdownTimeout bounds the wait for in-flight requests on shutdown.
	ShutdownTimeout time.Duration

	// MaxManifestSize is the largest manifest body accepted, in bytes.
	MaxManifestSize int64
}

// Flags returns the []cli.Flag related to current options.
func (o *ServerOptions) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "port",
			Aliases:     []string{"p"},
			Usage:       "port to listen on",
			Sources:     cli.EnvVars("RREGISTRY_SERVER_PORT"),
			Value:       o.Port,
			Destination: &o.Port,
			Category:    ServerFlagCategory,
		},
		&cli.StringFlag{
			Name:        "host",
			Usage:       "host to listen on",
			Sources:     cli.EnvVars("RREGISTRY_SERVER_HOST"),
			Value:       o.Host,
			Destination: &o.Host,
			Category:    ServerFlagCategory,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "how long to wait for in-flight requests on shutdown",
			Sources:     cli.EnvVars("RREGISTRY_SERVER_SHUTDOWN_TIMEOUT"),
			Value:       o.ShutdownTimeout,
			Destination: &o.ShutdownTimeout,
			Category:    ServerFlagCategory,
		},
		&cli.IntFlag{
			Name:        "max-manifest-size",
			Usage:       "largest manifest body accepted, in bytes",
			Sources:     cli.EnvVars("RREGISTRY_SERVER_MAX_MANIFEST_SIZE"),
			Value:       o.MaxManifestSize,
			Destination: &o.MaxManifestSize,
			Category:    ServerFlagCategory,
			Validator: func(n int64) error {
				if n <= 0 {
					return fmt.Errorf("max manifest size must be positive, got %d", n)
				}
				return nil
			},
		},
	}
}

// Address returns the server address format as host:port.
func (o *ServerOptions) Address() string {
	return net.JoinHostPort(o.Host, strconv.FormatInt(o.Port, 10))
}