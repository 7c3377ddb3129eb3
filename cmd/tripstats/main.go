// Command tripstats runs the quarterly bike-share trip analysis: it loads the
// two input exports, unifies and cleans them, and writes the segment-by-
// weekday summary plus charts. It loads the run config, optionally initializes
// a metrics backend, and executes the pipeline once.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"tripstats/internal/config"
	"tripstats/internal/metrics"
	"tripstats/internal/metrics/datadog"
	"tripstats/internal/metrics/prompush"
	"tripstats/internal/pipeline"
)

func main() {
	var (
		cfgPath           string
		legacyPath        string
		modernPath        string
		outPath           string
		chartsPath        string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (optional; path flags below override it)")
	flag.StringVar(&legacyPath, "legacy", "", "legacy-format quarterly trips CSV")
	flag.StringVar(&modernPath, "modern", "", "modern-format quarterly trips CSV")
	flag.StringVar(&outPath, "out", "", "grouped summary CSV output path")
	flag.StringVar(&chartsPath, "charts", "", "chart workbook (.xlsx) output path (optional)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address for the datadog backend")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	terminalCharts := flag.Bool("terminal-charts", false, "render the bar charts to the terminal too")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	initLogger(*verbose)

	p, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	// Path flags override the config file so runs never depend on paths baked
	// into source or a shared config.
	if legacyPath != "" {
		p.Inputs.Legacy.Path = legacyPath
	}
	if modernPath != "" {
		p.Inputs.Modern.Path = modernPath
	}
	if outPath != "" {
		p.Output.SummaryCSV = outPath
	}
	if chartsPath != "" {
		p.Output.ChartsXLSX = chartsPath
	}
	if *terminalCharts {
		p.Output.TerminalCharts = true
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Info("configuration is valid")
		return
	}

	initMetrics(p, metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg)
	defer flushMetrics()

	start := time.Now()
	sum, err := pipeline.Run(context.Background(), p)
	if err != nil {
		// Not log.Fatalf: os.Exit would skip the deferred flush and drop the
		// failure-status counters the run just recorded.
		log.Errorf("%v", err)
		flushMetrics()
		os.Exit(1)
	}

	log.WithFields(log.Fields{
		"retained": sum.Retained,
		"elapsed":  time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("run complete")
}

// loadConfig reads the run file when one is given; otherwise it starts from
// an empty pipeline that the path flags must fill in.
func loadConfig(path string) (config.Pipeline, error) {
	if path == "" {
		return config.Pipeline{
			Cleaning: config.Cleaning{
				LabelPolicy: config.LabelPolicyStrict,
				DedupKeys:   []string{"ride_id"},
			},
		}, nil
	}
	return config.Load(path)
}

// initLogger configures logrus from the LOG_LEVEL environment variable, with
// -v forcing debug output.
func initLogger(verbose bool) {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	levelName := os.Getenv("LOG_LEVEL")
	if levelName == "" {
		levelName = "info"
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// initMetrics decides the metrics backend: flag, then config, then env, then
// disabled. A backend that fails to initialize leaves the nop backend in
// place; metrics never block the run.
func initMetrics(p config.Pipeline, backendFlg, gatewayFlg, statsdFlg string) {
	backendName := backendFlg
	if backendName == "" {
		backendName = p.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	jobName := p.Job
	if jobName == "" {
		jobName = "tripstats"
	}

	switch backendName {
	case "pushgateway":
		gwURL := gatewayFlg
		if gwURL == "" {
			gwURL = p.Metrics.Options.String("gateway_url", "")
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Warnf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Infof("metrics: backend=pushgateway url=%s job=%s", gwURL, jobName)
		metrics.SetBackend(b)

	case "datadog":
		addr := statsdFlg
		if addr == "" {
			addr = p.Metrics.Options.String("statsd_addr", "")
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  p.Metrics.Options.String("namespace", ""),
			GlobalTags: p.Metrics.Options.Strings("tags", nil),
		})
		if err != nil {
			log.Warnf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Infof("metrics: backend=datadog addr=%s job=%s", addr, jobName)
		metrics.SetBackend(b)

	case "", "none":
		log.Debugf("metrics: disabled (backend=%q)", backendName)

	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// flushMetrics pushes whatever the run recorded; flush problems are logged,
// never fatal.
func flushMetrics() {
	if err := metrics.Flush(); err != nil {
		log.Warnf("metrics: flush error: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
