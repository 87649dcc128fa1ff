package crawl

import (
	"context"
	"time"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"go.uber.org/zap"
)

// Crawl fetches and extracts every result page in order and returns the sealed dataset.
// The first failing page aborts the crawl, nothing collected so far is returned.
func (j *Job) Crawl(ctx context.Context) (*jobs.Dataset, error) {
	if err := j.validate(); err != nil {
		return nil, err
	}
	base := j.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", j.ID.String()), zap.String("query", j.Query))

	dataset := jobs.NewDataset()
	for page, offset := range Offsets(j.Pages) {
		if page > 0 {
			if err := j.pause(ctx, logger); err != nil {
				return nil, err
			}
		}
		//Is the context canceled?
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := SearchURL(base, j.Query, offset)
		logger.Debug("fetching page", zap.Int("page", page), zap.String("url", pageURL))

		markup, err := j.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			logger.Error("page fetch failed, aborting crawl", zap.Int("page", page), zap.Error(err))
			return nil, err
		}

		result, err := j.Extractor.Extract(markup)
		if err != nil {
			return nil, err
		}
		if result.Cards == 0 {
			logger.Warn("no job cards on page, possible block page", zap.Int("page", page), zap.String("url", pageURL))
			if j.StrictPages {
				return nil, &EmptyPageError{Page: page, URL: pageURL}
			}
		}

		dataset.Append(result.Records)

		if j.OnPage != nil {
			j.OnPage(PageResult{
				Page:    page,
				Offset:  offset,
				URL:     pageURL,
				Records: len(result.Records),
				Skipped: result.Skipped,
			})
		}
	}

	dataset.Seal()
	logger.Info("crawl finished", zap.Int("pages", j.Pages), zap.Int("records", dataset.Len()))
	return dataset, nil
}

func (j *Job) pause(ctx context.Context, logger *zap.Logger) error {
	if j.Pacer == nil {
		return nil
	}
	d := j.Pacer.Next()
	if d <= 0 {
		return nil
	}
	logger.Debug("waiting before next page", zap.Duration("delay", d))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
