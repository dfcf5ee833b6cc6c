package postgres

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestMigratorMissingDirectory(t *testing.T) {
	m := NewMigrator("postgres://localhost:1/none?sslmode=disable", t.TempDir()+"/missing", zerolog.Nop())

	if err := m.Up(); err == nil {
		t.Fatalf("expected error for a missing migrations directory")
	}
	if err := m.Down(); err == nil {
		t.Fatalf("expected error for a missing migrations directory")
	}
}
