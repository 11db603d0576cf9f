package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mycok/kwScout/corpus/store/es"
	memCorpusStore "github.com/mycok/kwScout/corpus/store/memory"
	"github.com/mycok/kwScout/crawler"
	"github.com/mycok/kwScout/crawler/webclient"
	"github.com/mycok/kwScout/runtrack"
	"github.com/mycok/kwScout/runtrack/store/cdb"
	memTrackStore "github.com/mycok/kwScout/runtrack/store/memory"
	"github.com/mycok/kwScout/search/serp"
	"github.com/mycok/kwScout/service"
	"github.com/mycok/kwScout/service/harvest"
)

const appName = "kwScout"

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all services.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"host": host,
	})

	svcGroup, err := configureServices(logger)
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Launch a separate process to listen and respond to os signals
	// and trigger a graceful shutdown.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			// Cancel context, this signals all services to return since
			// they all share this same context.
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := svcGroup.Execute(ctx); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	logger.Info("shutdown complete")
}

func configureServices(logger *logrus.Entry) (service.Group, error) {
	var (
		harvestConfig   harvest.Config
		webClientConfig webclient.Config
	)

	flag.StringVar(
		&harvestConfig.Industry, "industry", "",
		"Industry label the configured keywords belong to",
	)
	keywords := flag.String(
		"keywords", "",
		"Comma-separated list of keywords to harvest",
	)
	flag.StringVar(
		&harvestConfig.OutputDir, "output-dir", "reports",
		"Directory keyword reports are exported to",
	)
	flag.IntVar(
		&harvestConfig.MaxResults, "max-results", 100,
		"Maximum number of candidate URLs harvested per keyword [capped at 200]",
	)
	flag.IntVar(
		&harvestConfig.GlobalConcurrency, "global-concurrency", 16,
		"Maximum number of concurrent in-flight page fetches",
	)
	flag.IntVar(
		&harvestConfig.PerDomainConcurrency, "per-domain-concurrency", 2,
		"Maximum number of concurrent in-flight page fetches per host",
	)
	flag.DurationVar(
		&harvestConfig.RefreshInterval, "harvest-refresh-interval", 0,
		"Time between subsequent harvest passes [0 performs a single pass]",
	)

	flag.StringVar(
		&webClientConfig.UserAgent, "fetch-user-agent", "",
		"User-Agent header sent with page fetches [defaults to a desktop browser agent]",
	)
	flag.DurationVar(
		&webClientConfig.RequestTimeout, "fetch-request-timeout", 10*time.Second,
		"Deadline applied to each page fetch attempt",
	)
	flag.IntVar(
		&webClientConfig.MaxRetries, "fetch-max-retries", 1,
		"Number of times a timed-out or failed page fetch is re-attempted",
	)
	flag.DurationVar(
		&webClientConfig.DownloadDelay, "fetch-download-delay", 500*time.Millisecond,
		"Minimum pause between successive page fetches to the same host",
	)
	flag.BoolVar(
		&webClientConfig.RespectRobotsPolicy, "fetch-respect-robots-policy", true,
		"Whether page fetches should honor robots exclusion policies",
	)

	corpusURI := flag.String(
		"corpus-uri", "memory://",
		"URI for connecting to the content corpus store."+
			" [supported URI's: memory://, es://node1:9200,...,nodeN:9200]",
	)
	trackerURI := flag.String(
		"run-tracker-uri", "memory://",
		"URI for connecting to the run tracker store."+
			" [supported URI's: memory://, postgresql://user@host:26257/kwscout?sslmode=disable]",
	)

	flag.Parse()

	// Load optional .env values such as the SerpApi key.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	searchClient, err := serp.NewClient(serp.Config{
		APIKey: os.Getenv("SERP_API_KEY"),
	})
	if err != nil {
		return nil, err
	}

	// Retrieve suitable corpus index and run tracker implementations and
	// plug them into the service configuration.
	corpusIndex, err := getCorpusIndex(*corpusURI, logger)
	if err != nil {
		return nil, err
	}

	runTracker, err := getRunTracker(*trackerURI, logger)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(harvestConfig.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	harvestConfig.SearchAPI = searchClient
	harvestConfig.CorpusAPI = corpusIndex
	harvestConfig.Tracker = runTracker
	harvestConfig.Keywords = splitKeywords(*keywords)
	harvestConfig.URLGetter = webclient.NewClient(webClientConfig)
	harvestConfig.Logger = logger.WithField("service", "harvest")

	var svcGroup service.Group

	svc, err := harvest.New(harvestConfig)
	if err != nil {
		return nil, err
	}
	svcGroup = append(svcGroup, svc)

	return svcGroup, nil
}

func getCorpusIndex(corpusURI string, logger *logrus.Entry) (crawler.Indexer, error) {
	if corpusURI == "" {
		return nil, fmt.Errorf("corpus URI must be specified with --corpus-uri")
	}

	uri, err := url.Parse(corpusURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus URI: %w", err)
	}

	switch uri.Scheme {
	case "memory":
		logger.Info("using in-memory corpus store")

		return memCorpusStore.NewInMemoryIndex()
	case "es":
		nodes := strings.Split(uri.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		logger.Info("using ES corpus store")

		return es.NewEsIndexer(nodes, false)
	default:
		return nil, fmt.Errorf("unsupported corpus URI scheme: %q", uri.Scheme)
	}
}

func getRunTracker(trackerURI string, logger *logrus.Entry) (runtrack.Tracker, error) {
	if trackerURI == "" {
		return nil, fmt.Errorf("run tracker URI must be specified with --run-tracker-uri")
	}

	uri, err := url.Parse(trackerURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run tracker URI: %w", err)
	}

	switch uri.Scheme {
	case "memory":
		logger.Info("using in-memory run tracker")

		return memTrackStore.NewInMemoryTracker(), nil
	case "postgresql":
		logger.Info("using CDB run tracker")

		return cdb.NewCockroachDBTracker(trackerURI)
	default:
		return nil, fmt.Errorf("unsupported run tracker URI scheme: %q", uri.Scheme)
	}
}

func splitKeywords(commaSeparated string) []string {
	var keywords []string

	for _, keyword := range strings.Split(commaSeparated, ",") {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}

	return keywords
}
