package store

import (
	"fmt"
	"strconv"

	"erp-assistant/internal/common/config"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	Name         string
	likeOperator string
	primaryKey   string
	numbered     bool
}

var (
	Postgres = Dialect{
		Name:         config.DriverPostgres,
		likeOperator: "ILIKE",
		primaryKey:   "SERIAL PRIMARY KEY",
		numbered:     true,
	}
	SQLite = Dialect{
		Name:         config.DriverSQLite,
		likeOperator: "LIKE",
		primaryKey:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) placeholders(from, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = d.Placeholder(from + i)
	}
	return out
}
