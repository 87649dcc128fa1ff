package csv

import (
	"encoding/csv"
	"io"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
)

// Encode writes a header row equal to jobs.Columns followed by one row per record.
// Null fields are written as empty cells.
func Encode(w io.Writer, records []jobs.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(jobs.Columns); err != nil {
		return err
	}
	row := make([]string, len(jobs.Columns))
	for _, r := range records {
		for i, v := range r.Values() {
			row[i] = ""
			if v != nil {
				row[i] = *v
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
