package format

import (
	"bufio"
	"database/sql"
	stdcsv "encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/parquet"
	goparquet "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

var scrapedAt = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func sampleDataset() *jobs.Dataset {
	ds := jobs.NewDataset()
	ds.Append([]jobs.Record{
		{
			Title:      "Backend Engineer",
			Company:    jobs.String("Acme, Inc."),
			Location:   jobs.String("Berlin"),
			PostedDate: jobs.String("Just posted"),
			Summary:    jobs.String(`Go, "Postgres" and Kafka`),
			Salary:     jobs.String("€70,000"),
			URL:        "https://indeed.com/rc/clk?jk=1",
			ScrapedAt:  scrapedAt,
		},
		{
			Title:     "Data Engineer",
			URL:       "https://indeed.com/rc/clk?jk=2",
			ScrapedAt: scrapedAt,
		},
	})
	ds.Seal()
	return ds
}

func TestFromPath(t *testing.T) {
	cases := map[string]Format{
		"jobs.csv":         CSV,
		"out/jobs.json":    JSONLines,
		"jobs.PARQUET":     Parquet,
		"/tmp/jobs.sqlite": SQLite,
		"jobs.db":          SQLite,
	}
	for path, want := range cases {
		got, err := FromPath(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := FromPath("jobs")
	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	require.Equal(t, "", unsupported.Suffix)
}

func TestWriteUnsupportedSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.txt")

	err := Write(sampleDataset(), path)

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	require.Equal(t, ".txt", unsupported.Suffix)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, Write(sampleDataset(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := stdcsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, jobs.Columns, rows[0])
	require.Equal(t, []string{
		"Backend Engineer", "Acme, Inc.", "Berlin", "Just posted", `Go, "Postgres" and Kafka`, "€70,000",
		"https://indeed.com/rc/clk?jk=1", "2024-02-03T04:05:06Z",
	}, rows[1])
	require.Equal(t, []string{
		"Data Engineer", "", "", "", "", "", "https://indeed.com/rc/clk?jk=2", "2024-02-03T04:05:06Z",
	}, rows[2])
}

func TestWriteJSONLinesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, Write(sampleDataset(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []jobs.Record
	var raw []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r jobs.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)

		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		raw = append(raw, m)
	}
	require.NoError(t, sc.Err())

	want := sampleDataset().Records()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].Title, got[i].Title)
		require.Equal(t, want[i].Company, got[i].Company)
		require.Equal(t, want[i].Summary, got[i].Summary)
		require.True(t, want[i].ScrapedAt.Equal(got[i].ScrapedAt))
	}

	require.Contains(t, raw[1], "salary")
	require.Nil(t, raw[1]["salary"])
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.parquet")
	require.NoError(t, Write(sampleDataset(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	rows, err := goparquet.Read[parquet.Row](f, info.Size())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Backend Engineer", rows[0].Title)
	require.Equal(t, "Acme, Inc.", *rows[0].Company)
	require.Nil(t, rows[1].Company)
	require.Nil(t, rows[1].Salary)
	require.Equal(t, "https://indeed.com/rc/clk?jk=2", rows[1].URL)
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.sqlite")
	require.NoError(t, Write(sampleDataset(), path))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM jobs").Scan(&count))
	require.Equal(t, 2, count)

	var title string
	var company sql.NullString
	require.NoError(t, db.QueryRow("SELECT title, company FROM jobs ORDER BY id DESC LIMIT 1").Scan(&title, &company))
	require.Equal(t, "Data Engineer", title)
	require.False(t, company.Valid)
}

func TestWriteReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, Write(sampleDataset(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(body), "stale")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteNewFilesAreWorldReadable(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"jobs.csv", "jobs.json", "jobs.parquet", "jobs.sqlite"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Write(sampleDataset(), path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o644), info.Mode().Perm(), name)
	}
}
