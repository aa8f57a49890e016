package db

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_audit.sql", "CREATE TABLE b (id INT);")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE a (id INT);")
	writeFile(t, dir, "010_control_plans.sql", "CREATE TABLE c (id INT);")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	want := []int{1, 2, 10}
	for i, mig := range migs {
		if mig.Version != want[i] {
			t.Errorf("migration %d: expected version %d, got %d", i, want[i], mig.Version)
		}
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "CREATE TABLE a (id INT);")
	writeFile(t, dir, "README.md", "notes")
	writeFile(t, dir, "notes_draft.sql", "-- no version prefix")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migs) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migs))
	}
	if migs[0].Name != "001_core.sql" {
		t.Errorf("unexpected migration: %s", migs[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// tableDDL extracts the column list of one CREATE TABLE from
// whitespace-normalized migration SQL.
func tableDDL(t *testing.T, sql, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(sql, marker)
	if start < 0 {
		t.Fatalf("migration does not create table %s", table)
	}
	rest := sql[start+len(marker):]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated CREATE TABLE for %s", table)
	}
	return rest[:end]
}

// The repositories scan these columns into Go strings and int64s without any
// type conversion, so the declared SQL types must stay text and bigint. A
// date-typed column here breaks every read of an existing row, and a varchar
// registration id breaks the checked-in stamp.
func TestCoreMigration_ColumnTypesMatchScanTargets(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_core.sql"))
	if err != nil {
		t.Fatal(err)
	}
	sql := regexp.MustCompile(`\s+`).ReplaceAllString(string(raw), " ")

	cases := []struct {
		table, column, sqlType string
	}{
		{"bookings", "registration_id", "BIGINT"},
		{"bookings", "service_date", "VARCHAR(10)"},
		{"patients", "birth_date", "VARCHAR(10)"},
		{"patients", "registered_date", "VARCHAR(10)"},
		{"queue_tickets", "date", "VARCHAR(10)"},
		{"registrations", "referral_date", "VARCHAR(10)"},
		{"registrations", "sep_date", "VARCHAR(10)"},
		{"control_plans", "planned_date", "VARCHAR(10)"},
	}
	for _, tc := range cases {
		ddl := tableDDL(t, sql, tc.table)
		if !strings.Contains(ddl, tc.column+" "+tc.sqlType) {
			t.Errorf("%s.%s must be %s to match its scan target", tc.table, tc.column, tc.sqlType)
		}
	}
}
