package harvest

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/kwScout/crawler"
	"github.com/mycok/kwScout/crawler/privnet"
	"github.com/mycok/kwScout/crawler/webclient"
	"github.com/mycok/kwScout/runtrack"
	"github.com/mycok/kwScout/search"
)

const (
	defaultMaxResults           = 100
	maxResultsCap               = 200
	defaultGlobalConcurrency    = 16
	defaultPerDomainConcurrency = 2
)

// Config defines configurations for the keyword harvest service.
type Config struct {
	// API for resolving keywords into ranked candidate URLs.
	SearchAPI search.Provider

	// API for indexing accepted content blocks into the searchable corpus.
	CorpusAPI crawler.Indexer

	// API for tracking run completion per industry and keyword.
	Tracker runtrack.Tracker

	// An API for detecting private network addresses. If not specified,
	// a default implementation that handles the private network ranges
	// defined in RFC1918 will be used instead.
	PrivateNetworkDetector crawler.PrivateNetworkDetector

	// An API for performing HTTP requests. If not specified, a polite
	// web client with default settings will be used instead.
	URLGetter crawler.URLGetter

	// The industry label the configured keywords belong to. It keys run
	// completion together with each keyword and may be empty.
	Industry string

	// The keywords to harvest, in order.
	Keywords []string

	// The directory keyword reports are exported to.
	OutputDir string

	// The maximum number of candidate URLs harvested per keyword. If not
	// specified, 100 will be used instead. Values above 200 are rejected.
	MaxResults int

	// Maximum number of concurrent in-flight fetches. If not specified,
	// 16 will be used instead.
	GlobalConcurrency int

	// Maximum number of concurrent in-flight fetches per host. If not
	// specified, 2 will be used instead.
	PerDomainConcurrency int

	// The duration between subsequent harvest passes. If not specified,
	// the service performs a single pass and returns.
	RefreshInterval time.Duration

	// A clock instance for generating time-related events. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.SearchAPI == nil {
		err = multierror.Append(err, fmt.Errorf("search API not provided"))
	}

	if config.CorpusAPI == nil {
		err = multierror.Append(err, fmt.Errorf("corpus API not provided"))
	}

	if config.Tracker == nil {
		err = multierror.Append(err, fmt.Errorf("run tracker not provided"))
	}

	if len(config.Keywords) == 0 {
		err = multierror.Append(err, fmt.Errorf("no keywords provided"))
	}

	if config.OutputDir == "" {
		err = multierror.Append(err, fmt.Errorf("output directory not provided"))
	}

	if config.PrivateNetworkDetector == nil {
		var detectorErr error

		config.PrivateNetworkDetector, detectorErr = privnet.NewDetector()
		if detectorErr != nil {
			err = multierror.Append(err, detectorErr)
		}
	}

	if config.URLGetter == nil {
		config.URLGetter = webclient.NewClient(webclient.Config{})
	}

	if config.MaxResults <= 0 {
		config.MaxResults = defaultMaxResults
	}

	if config.MaxResults > maxResultsCap {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value for max results, must not exceed %d", maxResultsCap,
		))
	}

	if config.GlobalConcurrency <= 0 {
		config.GlobalConcurrency = defaultGlobalConcurrency
	}

	if config.PerDomainConcurrency <= 0 {
		config.PerDomainConcurrency = defaultPerDomainConcurrency
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
