// Package cli implements the nfetch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/netfoundation/config"
	"github.com/kbukum/netfoundation/httpclient"
	"github.com/kbukum/netfoundation/logger"
	"github.com/kbukum/netfoundation/observability"
	"github.com/kbukum/netfoundation/param"
	"github.com/kbukum/netfoundation/validation"
	"github.com/kbukum/netfoundation/version"
)

const appName = "nfetch"

// options holds the persistent flags.
type options struct {
	configFile    string
	timeout       time.Duration
	arrayEncoding string
	boolEncoding  string
	bodyEncoder   string
	debug         bool
	noColor       bool
}

// fileConfig is the layout of nfetch.yaml.
//
//	network:
//	  timeout: 10s
//	  encoding:
//	    array_encoding: no_brackets
//	log:
//	  level: debug
//	telemetry:
//	  enabled: true
//	  endpoint: localhost:4318
type fileConfig struct {
	Network   httpclient.Settings  `mapstructure:"network"`
	Log       logger.Config        `mapstructure:"log"`
	Telemetry observability.Config `mapstructure:"telemetry"`
}

// NewRootCommand builds the nfetch command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Send HTTP requests described in YAML files",
		Long: `nfetch assembles a request from a YAML descriptor, sends it and prints
the response body.

Examples:
  nfetch run users.yaml
  nfetch run users.yaml --extract data.0.name
  nfetch build users.yaml --array-encoding no_brackets --bool-encoding literal`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Path to config file (default: search for nfetch.yaml)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "Request timeout, overrides network.timeout")
	pf.StringVar(&opts.arrayEncoding, "array-encoding", "", "Array encoding: brackets or no_brackets")
	pf.StringVar(&opts.boolEncoding, "bool-encoding", "", "Boolean encoding: numeric or literal")
	pf.StringVar(&opts.bodyEncoder, "body-encoder", "", "Body encoder: form or json")
	pf.BoolVar(&opts.debug, "debug", false, "Print every exchange to stderr")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCommand(opts))
	root.AddCommand(newBuildCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs nfetch with the process arguments and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// load reads the configuration file and environment, then applies flag
// overrides. Flags win over NFETCH_* variables, which win over the file.
func (o *options) load() (*fileConfig, error) {
	loaderOpts := []config.LoaderOption{config.WithEnvPrefix("NFETCH")}
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}

	var fc fileConfig
	if err := config.LoadConfig(appName, &fc, loaderOpts...); err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	s := &fc.Network
	if o.timeout > 0 {
		s.Timeout = o.timeout
	}
	if o.arrayEncoding != "" {
		s.Encoding.Array = param.ArrayEncoding(o.arrayEncoding)
	}
	if o.boolEncoding != "" {
		s.Encoding.Bool = param.BoolEncoding(o.boolEncoding)
	}
	if o.bodyEncoder != "" {
		s.Encoding.Body = param.BodyEncoder(o.bodyEncoder)
	}
	if o.debug {
		s.Debug = true
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	if fc.Log.Level == "" {
		fc.Log.Level = "warn"
	}
	fc.Log.NoColor = fc.Log.NoColor || o.noColor
	fc.Log.ApplyDefaults()
	if err := fc.Log.Validate(); err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	if fc.Telemetry.Enabled {
		if err := validation.Validate(&fc.Telemetry); err != nil {
			return nil, withCode(ExitConfigError, fmt.Errorf("telemetry: %w", err))
		}
	}
	return &fc, nil
}

// newLogger writes to w, normally the command's stderr.
func (fc *fileConfig) newLogger(w io.Writer) *logger.Logger {
	cfg := fc.Log
	cfg.Writer = w
	return logger.New(&cfg, appName)
}

// client bundles a service with the resources to release after use.
type client struct {
	svc      *httpclient.Service
	exec     *httpclient.HTTPExecutor
	shutdown observability.ShutdownFunc
}

func (c *client) Close() {
	c.exec.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.shutdown(ctx)
}

// newClient builds the service used by run: logging always, tracing and
// metrics when telemetry is enabled, the console trace in debug mode.
func newClient(ctx context.Context, fc *fileConfig, log *logger.Logger, stderr io.Writer, noColor bool, extra ...httpclient.Middleware) (*client, error) {
	exec, err := httpclient.NewHTTPExecutor(fc.Network.Transport)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}

	shutdown, err := observability.Setup(ctx, fc.Telemetry, appName, version.Short())
	if err != nil {
		exec.Close()
		return nil, withCode(ExitConfigError, err)
	}

	mws := []httpclient.Middleware{httpclient.WithLogging(log)}
	if fc.Telemetry.Enabled {
		metrics, err := observability.NewClientMetrics(observability.Meter(appName))
		if err != nil {
			exec.Close()
			_ = shutdown(ctx)
			return nil, err
		}
		mws = append(mws, httpclient.WithTracing(appName), httpclient.WithMetrics(metrics))
	}
	mws = append(mws, extra...)

	opts := []httpclient.ServiceOption{httpclient.WithMiddleware(mws...)}
	if fc.Network.Debug {
		opts = append(opts, httpclient.WithDebugLogger(httpclient.NewConsoleTrace(stderr, noColor)))
	}
	return &client{
		svc:      httpclient.NewService(exec, fc.Network, opts...),
		exec:     exec,
		shutdown: shutdown,
	}, nil
}
