package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/getsentry/raven-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"reqmetrics/internal/binding"
	"reqmetrics/internal/log"
	"reqmetrics/internal/meta"
)

func newRootCommand() *cobra.Command {
	var (
		configPath string
		verbosity  string
		version    bool
	)

	cmd := &cobra.Command{
		Use:          "reqmetricsd",
		Short:        "Example HTTP service emitting request-scoped metrics",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Report the compiled version and exit
			if version {
				fmt.Fprintf(cmd.OutOrStdout(), "reqmetricsd/%s\n", meta.VersionSHA)
				return nil
			}

			// Logging configuration; default to log.Error verbosity
			level, _ := log.ParseLevel(verbosity)
			logger := log.NewConsoleLogger(level)
			logger.Debug("main: initialized logger: level=%v", level)

			return serve(configPath, logger)
		},
	}

	cmd.Flags().StringVar(
		&configPath,
		"config",
		os.Getenv("REQMETRICS_CONFIG"),
		"path to the configuration file on disk",
	)
	cmd.Flags().StringVar(
		&verbosity,
		"verbosity",
		"error",
		"desired logging verbosity: one of error, warn, info, debug",
	)
	cmd.Flags().BoolVar(
		&version,
		"version",
		false,
		"print the compiled reqmetricsd version SHA",
	)

	return cmd
}

// serve parses the configuration at configPath and serves HTTP until the listener fails.
func serve(configPath string, logger log.Logger) error {
	logger.Debug("main: reading and parsing config: path=%s", configPath)
	config, err := meta.ParseConfig(configPath)
	if err != nil {
		return err
	}

	// Configure error reporting
	if config.Application != nil && config.Application.SentryDSN != "" {
		if err := raven.SetDSN(config.Application.SentryDSN); err != nil {
			return fmt.Errorf("main: invalid sentry DSN: err=%v", err)
		}
		raven.SetRelease(meta.VersionSHA)
	}

	// Configure metrics reporting
	registry := prometheus.NewRegistry()
	switch backend := config.MetricsBackend(); backend {
	case meta.BackendNoop:
		logger.Warn("main: no metrics backend specified; disabling metrics")
	case meta.BackendStatsd:
		logger.Info(
			"main: configuring statsd metrics reporting: host=%s port=%d prefix=%s sample_rate=%f",
			config.Metrics.Host,
			config.Metrics.Port,
			config.Metrics.Prefix,
			config.Metrics.SampleRate,
		)
	default:
		logger.Info("main: configuring metrics reporting: backend=%s", backend)
	}

	b := binding.New(binding.NewSinkFactory(config, registry), logger)
	router := newRouter(b)

	if config.MetricsBackend() == meta.BackendPrometheus {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Name("metrics")
	}

	logger.Info("main: serving indefinitely: addr=%s", config.Server.Address)

	return http.ListenAndServe(config.Server.Address, router)
}
