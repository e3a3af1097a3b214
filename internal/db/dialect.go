package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialect identifiers understood by Open.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	if conn == nil || conn.Dialector == nil {
		return false
	}
	return conn.Dialector.Name() == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a SQL predicate for case-insensitive LIKE on column.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column)
	}
	return fmt.Sprintf("%s ILIKE ? ESCAPE '\\'", column)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a substring LIKE argument for term, escaping wildcards.
func ContainsPattern(conn *gorm.DB, term string) string {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}

// SearchAny narrows q to rows where any of columns contains term, ignoring case.
// An empty term leaves q untouched.
func SearchAny(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := ContainsPattern(q, term)
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		clauses = append(clauses, CaseInsensitiveLikeExpr(q, column))
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
