package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestMigrationsCreateEveryTable(t *testing.T) {
	tables := []string{"registrations", "permits", "products", "notifications", "messages"}
	for _, table := range tables {
		matches, err := filepath.Glob(filepath.Join("migrations", "*_create_"+table+"_table.sql"))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected one migration for %s, got %d", table, len(matches))
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration: %v", err)
		}
		if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("%s: missing CREATE TABLE", matches[0])
		}
		if !strings.Contains(string(data), "DROP TABLE IF EXISTS "+table) {
			t.Errorf("%s: missing DROP TABLE", matches[0])
		}
	}
}

func TestRegistrationStatusCheckMatchesEnum(t *testing.T) {
	matches, _ := filepath.Glob(filepath.Join("migrations", "*_create_registrations_table.sql"))
	if len(matches) == 0 {
		t.Fatal("registrations migration missing")
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (status IN ('Pending', 'Approved', 'Rejected'))") {
		t.Fatal("status check constraint missing")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Permit Notes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_permit_notes.sql") {
		t.Fatalf("unexpected filename %q", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration failed validation: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}
