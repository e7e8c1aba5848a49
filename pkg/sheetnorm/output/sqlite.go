package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"

	_ "modernc.org/sqlite"
)

// LongTableName is the SQLite table that holds the long table.
const LongTableName = "long_records"

const createLongTable = `CREATE TABLE ` + LongTableName + ` (
	year      INTEGER NOT NULL,
	region    TEXT    NOT NULL,
	metric    TEXT    NOT NULL,
	dim_name  TEXT,
	dim_value TEXT,
	value     REAL    NOT NULL
)`

const insertLongRecord = `INSERT INTO ` + LongTableName +
	` (year, region, metric, dim_name, dim_value, value) VALUES (?, ?, ?, ?, ?, ?)`

const selectLongRecords = `SELECT year, region, metric, dim_name, dim_value, value FROM ` +
	LongTableName + ` ORDER BY rowid`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// WriteLongSQLite replaces the long_records table of the database at path
// with the rows of t. All rows are inserted in one transaction.
func WriteLongSQLite(ctx context.Context, path string, t *models.LongTable) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close sqlite %s: %w", path, cerr))
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+LongTableName); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err = tx.ExecContext(ctx, createLongTable); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertLongRecord)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range t.Records {
		if _, err = stmt.ExecContext(ctx, r.Year, r.Region, r.Metric,
			nullString(r.DimName), nullString(r.DimValue), r.Value); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadLongSQLite reads the long_records table in insertion order.
func ReadLongSQLite(ctx context.Context, path string) (*models.LongTable, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectLongRecords)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", LongTableName, err)
	}
	defer rows.Close()

	t := &models.LongTable{}
	for rows.Next() {
		var (
			r        models.LongRecord
			dimName  sql.NullString
			dimValue sql.NullString
		)
		if err := rows.Scan(&r.Year, &r.Region, &r.Metric, &dimName, &dimValue, &r.Value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.DimName = fromNullString(dimName)
		r.DimValue = fromNullString(dimValue)
		t.Append(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return t, nil
}
