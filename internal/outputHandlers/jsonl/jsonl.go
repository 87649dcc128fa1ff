package jsonl

import (
	"encoding/json"
	"io"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
)

// Encode writes one JSON object per line. Every column is present, absent fields as null.
func Encode(w io.Writer, records []jobs.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
