package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLite_CreatesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	database, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer database.Close()

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'search_histories'`).Scan(&name)
	if err != nil {
		t.Fatalf("history table missing: %v", err)
	}
}

func TestOpenSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}
