package jobs

import "time"

// Columns is the fixed schema shared by every record and every output format.
var Columns = []string{
	"title",
	"company",
	"location",
	"posted_date",
	"summary",
	"salary",
	"url",
	"scraped_at",
}

// TimeLayout is how scraped_at is rendered in text based formats.
const TimeLayout = time.RFC3339

// Record is one job listing. Optional fields are nil when the source page
// did not contain them, they are never dropped from the output.
type Record struct {
	Title      string    `json:"title"`
	Company    *string   `json:"company"`
	Location   *string   `json:"location"`
	PostedDate *string   `json:"posted_date"`
	Summary    *string   `json:"summary"`
	Salary     *string   `json:"salary"`
	URL        string    `json:"url"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// Values returns the record in Columns order, nil for absent fields.
func (r Record) Values() []*string {
	title := r.Title
	url := r.URL
	scrapedAt := r.ScrapedAt.UTC().Format(TimeLayout)
	return []*string{
		&title,
		r.Company,
		r.Location,
		r.PostedDate,
		r.Summary,
		r.Salary,
		&url,
		&scrapedAt,
	}
}

// CaptureTime truncates t to the second in UTC, the precision scraped_at is kept at.
func CaptureTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// String returns a pointer to s, for filling optional fields.
func String(s string) *string {
	return &s
}
