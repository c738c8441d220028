// Package store is the record store: employees, orders and the system
// catalogue, over database/sql with a postgres or sqlite dialect.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, driver string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect}, nil
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// EnsureSchema creates missing tables and indexes. It is safe to call on
// every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pk := s.dialect.primaryKey
	statements := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id ` + pk + `,
			employee_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			phone TEXT,
			address TEXT,
			email TEXT UNIQUE,
			gender TEXT,
			age INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS ix_employees_name ON employees (name)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id ` + pk + `,
			order_id TEXT NOT NULL UNIQUE,
			order_date TEXT NOT NULL,
			order_amount INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS system_info (
			id ` + pk + `,
			system_name TEXT NOT NULL UNIQUE,
			data_query_function_name TEXT NOT NULL,
			filterable_columns TEXT,
			frontend_route_name TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// listQuery builds SELECT <columns> FROM <table> [WHERE ...] ORDER BY id LIMIT/OFFSET.
func (s *Store) listQuery(table string, columns []string, filters Filters, page Page) (string, []interface{}) {
	page = page.normalize()
	where, args := filters.where(s.dialect, 1)

	n := len(args)
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + table + where +
		" ORDER BY id LIMIT " + s.dialect.Placeholder(n+1) + " OFFSET " + s.dialect.Placeholder(n+2)
	return query, append(args, page.Limit, page.Offset)
}

func (s *Store) insertQuery(table string, columns []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.Join(s.dialect.placeholders(1, len(columns)), ", ") + ") RETURNING id"
}

func (s *Store) exists(ctx context.Context, table, column string, value interface{}) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE "+column+" = "+s.dialect.Placeholder(1)+" LIMIT 1", value).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) deleteBy(ctx context.Context, table, column, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = "+s.dialect.Placeholder(1), value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isUniqueViolation recognises constraint errors from lib/pq and sqlite.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
