/*
	Package harvest implements the keyword harvest service. Each pass
	walks the configured keywords, resolves the incomplete ones into
	ranked candidate URLs, runs the crawl pipeline over them and exports
	the finalized run report before marking the keyword complete.
*/
package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/kwScout/crawler"
	"github.com/mycok/kwScout/report"
)

// Service represents a keyword harvest service for the kwScout
// application. It satisfies the service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured harvest service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("harvest service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "harvest" }

// Run executes the service and blocks until the context gets cancelled,
// an error occurs or, when no refresh interval is configured, a single
// harvest pass completes.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithFields(logrus.Fields{
		"industry":         svc.config.Industry,
		"keyword_count":    len(svc.config.Keywords),
		"output_dir":       svc.config.OutputDir,
		"refresh_interval": svc.config.RefreshInterval.String(),
	}).Info("starting service")
	defer svc.config.Logger.Info("stopped service")

	if err := svc.harvestPass(ctx); err != nil {
		return err
	}

	if svc.config.RefreshInterval <= 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.RefreshInterval):
			if err := svc.harvestPass(ctx); err != nil {
				return err
			}
		}
	}
}

func (svc *Service) harvestPass(ctx context.Context) error {
	svc.config.Logger.Info("started harvest pass")

	startedAt := svc.config.Clock.Now()

	for _, keyword := range svc.config.Keywords {
		// Stop walking the keyword list once a shutdown is under way.
		if ctx.Err() != nil {
			return nil
		}

		if err := svc.harvestKeyword(ctx, keyword); err != nil {
			return err
		}
	}

	svc.config.Logger.WithField(
		"elapsed_time", svc.config.Clock.Now().Sub(startedAt).String(),
	).Info("completed harvest pass")

	return nil
}

func (svc *Service) harvestKeyword(ctx context.Context, keyword string) error {
	logger := svc.config.Logger.WithFields(logrus.Fields{
		"industry": svc.config.Industry,
		"keyword":  keyword,
	})

	done, err := svc.config.Tracker.IsComplete(svc.config.Industry, keyword)
	if err != nil {
		return fmt.Errorf("harvest: unable to check run completion: %w", err)
	}

	if done {
		logger.Info("skipping already-harvested keyword")

		return nil
	}

	hitIt, err := svc.config.SearchAPI.Search(ctx, keyword, svc.config.MaxResults)
	if err != nil {
		return fmt.Errorf("harvest: unable to start keyword search: %w", err)
	}

	reports := report.NewAggregator()
	harvester := crawler.New(crawler.Config{
		PrivateNetworkDetector: svc.config.PrivateNetworkDetector,
		URLGetter:              svc.config.URLGetter,
		Reports:                reports,
		Corpus:                 svc.config.CorpusAPI,
		GlobalConcurrency:      svc.config.GlobalConcurrency,
		PerDomainConcurrency:   svc.config.PerDomainConcurrency,
	})

	count, err := harvester.Crawl(ctx, keyword, hitIt)
	if err != nil {
		// The keyword stays incomplete so a later pass retries it.
		logger.WithField("err", err).Error("keyword harvest failed")

		_ = hitIt.Close()

		return nil
	}

	// Provider failures end the hit sequence early. The partial hit set
	// has already been harvested at this point, so they only warrant a
	// warning.
	if searchErr := hitIt.Error(); searchErr != nil {
		logger.WithField(
			"err", searchErr,
		).Warn("keyword search ended early, harvested the partial hit set")
	}

	if err := hitIt.Close(); err != nil {
		return fmt.Errorf("harvest: unable to release the search iterator: %w", err)
	}

	// An interrupted run is left unexported and incomplete.
	if ctx.Err() != nil {
		logger.Info("keyword harvest interrupted by shutdown")

		return nil
	}

	if err := svc.exportReport(keyword, reports); err != nil {
		return err
	}

	if err := svc.config.Tracker.MarkComplete(svc.config.Industry, keyword); err != nil {
		return fmt.Errorf("harvest: unable to mark run complete: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"processed_url_count": count,
		"site_count":          reports.Count(),
	}).Info("successfully completed keyword harvest")

	return nil
}

func (svc *Service) exportReport(keyword string, reports *report.Aggregator) error {
	filePath := filepath.Join(
		svc.config.OutputDir,
		exportFileName(svc.config.Industry, keyword),
	)

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("harvest: unable to create report file: %w", err)
	}

	it := reports.Finalize()
	if err := report.WriteJSON(f, keyword, it); err != nil {
		_ = it.Close()
		_ = f.Close()

		return fmt.Errorf("harvest: unable to export report for %q: %w", keyword, err)
	}

	if err := it.Close(); err != nil {
		_ = f.Close()

		return fmt.Errorf("harvest: unable to release the report iterator: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("harvest: unable to close report file: %w", err)
	}

	return nil
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// exportFileName renders the report file name for a run, slugging the
// industry label and keyword into a filesystem-safe form.
func exportFileName(industry, keyword string) string {
	slug := strings.Trim(
		slugRegex.ReplaceAllString(strings.ToLower(industry+" "+keyword), "-"),
		"-",
	)
	if slug == "" {
		slug = "report"
	}

	return slug + ".json"
}
