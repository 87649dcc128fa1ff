package crawl

import (
	"context"
	"fmt"

	"github.com/AlfredBerg/job-crawler/internal/extract"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.indeed.com/jobs"
	ResultsPerPage = 10
)

// PageFetcher retrieves the raw markup of one page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordExtractor turns raw markup into records.
type RecordExtractor interface {
	Extract(markup []byte) (extract.Page, error)
}

// PageResult is reported through Job.OnPage after every page.
type PageResult struct {
	Page    int
	Offset  int
	URL     string
	Records int
	Skipped int
}

type Job struct {
	ID      uuid.UUID
	Query   string
	Pages   int
	BaseURL string

	Fetcher   PageFetcher
	Extractor RecordExtractor
	// Pacer picks the pause between two page fetches. Nil means no pause.
	Pacer Pacer

	// StrictPages aborts the crawl when a page comes back without any job card,
	// which usually means a block or captcha page.
	StrictPages bool

	Logger *zap.Logger
	OnPage func(PageResult)
}

// ValidationError reports a crawl parameter that can not be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// EmptyPageError is returned in strict mode for a page without job cards.
type EmptyPageError struct {
	Page int
	URL  string
}

func (e *EmptyPageError) Error() string {
	return fmt.Sprintf("page %d (%s) contained no job cards", e.Page, e.URL)
}

func (j *Job) validate() error {
	if j.Pages < 1 {
		return &ValidationError{Field: "pages", Reason: "must be >= 1"}
	}
	if j.Fetcher == nil {
		return &ValidationError{Field: "fetcher", Reason: "not set"}
	}
	if j.Extractor == nil {
		return &ValidationError{Field: "extractor", Reason: "not set"}
	}
	if u, ok := j.Pacer.(UniformPacer); ok {
		return u.Validate()
	}
	return nil
}
