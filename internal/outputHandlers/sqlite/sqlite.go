package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteOutput stores records in a "jobs" table with one TEXT column per schema column.
// All inserts between Init and Cleanup happen in one transaction.
type SqliteOutput struct {
	Database string
	db       *sql.DB
	tx       *sql.Tx
	insert   *sql.Stmt
}

func (o *SqliteOutput) Init() error {
	if o.Database == "" {
		return errors.New("sqlite database file not set")
	}

	db, err := sql.Open("sqlite3", o.Database)
	if err != nil {
		return err
	}
	o.db = db

	cols := make([]string, len(jobs.Columns))
	for i, c := range jobs.Columns {
		cols[i] = c + " text"
	}
	cols[0] = jobs.Columns[0] + " text not null"
	createJobs := fmt.Sprintf("CREATE TABLE IF NOT EXISTS jobs (id integer not null primary key, %s);", strings.Join(cols, ", "))
	if _, err := db.Exec(createJobs); err != nil {
		db.Close()
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return err
	}
	o.tx = tx

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(jobs.Columns)), ", ")
	insertJob := fmt.Sprintf("INSERT into jobs(%s) values(%s);", strings.Join(jobs.Columns, ", "), placeholders)
	o.insert, err = tx.Prepare(insertJob)
	if err != nil {
		tx.Rollback()
		db.Close()
		return err
	}
	return nil
}

func (o *SqliteOutput) HandleRecord(r jobs.Record) error {
	values := r.Values()
	args := make([]any, len(values))
	for i, v := range values {
		if v != nil {
			args[i] = *v
		}
	}
	_, err := o.insert.Exec(args...)
	return err
}

// Cleanup commits when commit is true, otherwise rolls back, and closes the database.
func (o *SqliteOutput) Cleanup(commit bool) error {
	o.insert.Close()
	var err error
	if commit {
		err = o.tx.Commit()
	} else {
		err = o.tx.Rollback()
	}
	if cerr := o.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Write stores records in the database file at path.
func Write(path string, records []jobs.Record) (err error) {
	o := SqliteOutput{Database: path}
	if err := o.Init(); err != nil {
		return err
	}
	defer func() {
		if cerr := o.Cleanup(err == nil); err == nil {
			err = cerr
		}
	}()

	for _, r := range records {
		if err = o.HandleRecord(r); err != nil {
			return err
		}
	}
	return nil
}
