package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(dup) || IsForeignKeyViolation(dup) {
		t.Fatalf("expected unique violation through wrapping")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected fk violation")
	}
	if !IsInvalidInput(&pgconn.PgError{Code: "22P02"}) {
		t.Fatalf("expected invalid input")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain errors carry no SQLSTATE")
	}
}

func TestPostgresPoolDefaults(t *testing.T) {
	got := PostgresPoolConfig{MaxOpenConns: 5}.withDefaults()
	if got.MaxOpenConns != 5 || got.MaxIdleConns != 25 || got.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", got)
	}
}
