package parquet

import (
	"io"
	"time"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/parquet-go/parquet-go"
)

// Row is the parquet layout of a record: text columns plus a timestamp.
type Row struct {
	Title      string    `parquet:"title"`
	Company    *string   `parquet:"company,optional"`
	Location   *string   `parquet:"location,optional"`
	PostedDate *string   `parquet:"posted_date,optional"`
	Summary    *string   `parquet:"summary,optional"`
	Salary     *string   `parquet:"salary,optional"`
	URL        string    `parquet:"url"`
	ScrapedAt  time.Time `parquet:"scraped_at,timestamp(millisecond)"`
}

func rowOf(r jobs.Record) Row {
	return Row{
		Title:      r.Title,
		Company:    r.Company,
		Location:   r.Location,
		PostedDate: r.PostedDate,
		Summary:    r.Summary,
		Salary:     r.Salary,
		URL:        r.URL,
		ScrapedAt:  r.ScrapedAt.UTC(),
	}
}

// Encode writes all records as a single row group.
func Encode(w io.Writer, records []jobs.Record) error {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, rowOf(r))
	}

	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return err
	}
	return pw.Close()
}
