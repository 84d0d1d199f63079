package sqlstore

import (
	"database/sql"
	"time"

	"github.com/aussiebroadwan/miniboss/internal/auth/domain"
)

// Timestamps are stored as unix seconds.

func unix(t time.Time) int64 { return t.Unix() }

func fromUnix(v int64) time.Time { return time.Unix(v, 0).UTC() }

func fromNullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinScopes(scopes []string) string { return domain.JoinScopes(scopes) }

func splitScopes(s string) []string { return domain.ParseScopes(s) }

type scanner interface {
	Scan(dest ...any) error
}
