package client

import (
	"errors"

	"github.com/1broseidon/aicookbook/common"
	"github.com/1broseidon/aicookbook/config"
	"github.com/1broseidon/aicookbook/internal/console"
	"github.com/1broseidon/aicookbook/internal/logging"
)

// ErrUnsupportedProvider is returned when an unsupported provider is specified
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ErrUnsupportedCapability is returned when a provider does not offer the requested call
var ErrUnsupportedCapability = errors.New("unsupported capability")

// ClientOption is a function type for configuring the Client.
type ClientOption func(*Client)

// WithDefaultProvider sets the provider used when a call names none.
func WithDefaultProvider(provider string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = provider
	}
}

// WithLogger sets the logger for the client.
// The provided logger will be used for all logging operations within the client.
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLogLevel sets the log level for the client.
// This option will only take effect if the client's logger supports setting log levels.
func WithLogLevel(level common.LogLevel) ClientOption {
	return func(c *Client) {
		if logger, ok := c.logger.(interface{ SetLevel(common.LogLevel) }); ok {
			logger.SetLevel(level)
		}
	}
}

// WithConsole sets where user-facing output goes.
func WithConsole(printer *console.Printer) ClientOption {
	return func(c *Client) {
		c.printer = printer
	}
}

// WithConfig sets the configuration used for output paths and by NewDefaultClient.
func WithConfig(cfg *config.Config) ClientOption {
	return func(c *Client) {
		c.config = cfg
	}
}
