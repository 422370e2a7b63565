package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/hairyhenderson/go-remotefs/adapterfs"
	"github.com/hairyhenderson/go-remotefs/httpadapter"
	"github.com/hairyhenderson/go-remotefs/traceadapter"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// errAbsent is returned by the exists command when the path doesn't exist. It
// only sets the exit status, and isn't reported.
var errAbsent = errors.New("path does not exist")

type flags struct {
	configFile string
	envFile    string
	baseURL    string
	logLevel   string
	userAgent  string
	listen     string
	headers    []string
	timeout    time.Duration
	requestIDs bool
	tracing    bool
	useFS      bool
}

type app struct {
	out      io.Writer
	errOut   io.Writer
	log      *logrus.Logger
	cfg      *config
	adapter  remotefs.Adapter
	shutdown func(context.Context) error
	flags    flags
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "remotefs",
		Short: "Read files from a remote HTTP(S) file tree",
		Long: `remotefs reads files and metadata from a file tree served over HTTP or
HTTPS, relative to a base URL. It never modifies the remote tree.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Path to a .env file to load, if present")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "Base URL of the remote file tree (env "+envBaseURL+")")
	pf.StringVar(&a.flags.logLevel, "log-level", defaultLogLevel, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&a.flags.userAgent, "user-agent", "", "User-Agent header to send with each request")
	pf.StringArrayVarP(&a.flags.headers, "header", "H", nil, "Extra request header, as 'Name: value' (repeatable)")
	pf.DurationVar(&a.flags.timeout, "timeout", defaultTimeout, "Timeout for each HTTP request (0 for none)")
	pf.BoolVar(&a.flags.requestIDs, "request-ids", false, "Send a random X-Request-Id header with each request")
	pf.BoolVar(&a.flags.tracing, "tracing", false, "Enable tracing with OTel")
	pf.BoolVar(&a.flags.useFS, "use-fs", false, "Read through the io/fs interface instead of the adapter methods")

	cmd.AddCommand(
		newStatCmd(a),
		newCatCmd(a),
		newExistsCmd(a),
		newServeCmd(a),
	)

	return cmd
}

// resolveConfig builds the effective config. Precedence, highest first:
// flags, environment, config file, defaults.
func (a *app) resolveConfig(cmd *cobra.Command) (*config, error) {
	if err := loadDotenv(a.flags.envFile); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if a.flags.configFile != "" {
		if err := cfg.loadConfigFile(a.flags.configFile); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	f := cmd.Flags()

	if f.Changed("base-url") {
		cfg.BaseURL = a.flags.baseURL
	}

	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}

	if f.Changed("user-agent") {
		cfg.UserAgent = a.flags.userAgent
	}

	if f.Changed("timeout") {
		cfg.Timeout = a.flags.timeout
	}

	if f.Changed("request-ids") {
		cfg.RequestIDs = a.flags.requestIDs
	}

	if f.Changed("tracing") {
		cfg.Tracing = a.flags.tracing
	}

	if f.Changed("listen") {
		cfg.Listen = a.flags.listen
	}

	if len(a.flags.headers) > 0 {
		hdrs, err := parseHeaders(a.flags.headers)
		if err != nil {
			return nil, err
		}

		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}

		for k, v := range hdrs {
			cfg.Headers[k] = v
		}
	}

	return cfg, nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}

	a.cfg = cfg

	a.log = logrus.New()
	a.log.SetOutput(a.errOut)

	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	a.log.SetLevel(lvl)

	ctx := cmd.Context()

	if cfg.Tracing {
		a.shutdown, err = initTracing(context.WithoutCancel(ctx), a.log)
		if err != nil {
			return fmt.Errorf("init trace exporter: %w", err)
		}
	}

	a.adapter, err = a.newAdapter()
	if err != nil {
		return err
	}

	a.log.WithField("base_url", adapterURL(a.adapter)).Debug("adapter ready")

	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.shutdown == nil {
		return nil
	}

	return a.shutdown(context.WithoutCancel(cmd.Context()))
}

// newAdapter looks up the adapter for the configured base URL, and applies
// the configured client, headers, and instrumentation to it.
func (a *app) newAdapter() (remotefs.Adapter, error) {
	base, err := a.cfg.baseURL()
	if err != nil {
		return nil, err
	}

	opts := []httpadapter.Option{httpadapter.WithLogger(a.log)}
	if a.cfg.RequestIDs {
		opts = append(opts, httpadapter.WithRequestIDs())
	}

	mux := remotefs.NewMux()
	mux.Add(remotefs.AdapterProviderFunc(func(u *url.URL) (remotefs.Adapter, error) {
		ad, err := httpadapter.New(u.String(), opts...)
		if err != nil {
			return nil, err
		}

		return ad, nil
	}, httpadapter.Provider.Schemes()...))

	ad, err := mux.Lookup(base)
	if err != nil {
		return nil, err
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = a.cfg.Timeout

	if a.cfg.Tracing {
		client.Transport = otelhttp.NewTransport(client.Transport)
	}

	ad = remotefs.WithHTTPClient(client, ad)
	ad = remotefs.WithHeader(a.cfg.header(), ad)

	if a.cfg.Tracing {
		ad = traceadapter.New(ad)
	}

	return ad, nil
}

// fsys returns the adapter as an fs.FS bound to ctx
func (a *app) fsys(ctx context.Context) fs.FS {
	return remotefs.WithContextFS(ctx, adapterfs.New(a.adapter))
}

func adapterURL(ad remotefs.Adapter) string {
	if u, ok := ad.(interface{ URL() string }); ok {
		return u.URL()
	}

	return ""
}
