package extract

import (
	"bytes"
	"net/url"
	"time"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const DefaultOrigin = "https://indeed.com"

// Page is the outcome of extracting one result page.
type Page struct {
	Records []jobs.Record
	// Cards is how many job cards matched, Skipped how many of them were dropped.
	Cards   int
	Skipped int
}

type Extractor struct {
	origin *url.URL
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Extractor)

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New builds an extractor that resolves listing links against origin.
func New(origin string, opts ...Option) (*Extractor, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	e := &Extractor{origin: u, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract parses markup and returns the records of every usable card in document order.
// Cards without a title anchor are skipped.
func (e *Extractor) Extract(markup []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Page{}, err
	}

	scrapedAt := jobs.CaptureTime(e.now())
	page := Page{Records: []jobs.Record{}}

	doc.Find(CardSelector).Each(func(i int, card *goquery.Selection) {
		page.Cards++

		var (
			record jobs.Record
			ok     bool
		)
		recovered := panics.Try(func() {
			record, ok = e.card(card, scrapedAt)
		})
		if recovered != nil {
			e.logger.Warn("dropping card", zap.Int("card", i), zap.Error(recovered.AsError()))
			ok = false
		}
		if !ok {
			page.Skipped++
			return
		}
		page.Records = append(page.Records, record)
	})

	return page, nil
}

func (e *Extractor) card(card *goquery.Selection, scrapedAt time.Time) (jobs.Record, bool) {
	anchor := card.Find(TitleSelector).First()
	if anchor.Length() == 0 {
		return jobs.Record{}, false
	}

	href, _ := anchor.Attr("href")
	record := jobs.Record{
		Title:     joinText(anchor.Get(0), ""),
		URL:       e.resolve(href),
		ScrapedAt: scrapedAt,
	}
	for _, f := range optionalFields {
		v := lookup(card, f.selector, f.sep)
		if v == nil {
			e.logger.Debug("field not present", zap.String("column", f.column), zap.String("title", record.Title))
		}
		f.assign(&record, v)
	}
	return record, true
}

func (e *Extractor) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return e.origin.String() + href
	}
	return e.origin.ResolveReference(ref).String()
}
