package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "new database in new directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "test.db")
			},
		},
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "test.db")
				db, err := OpenDatabase(path)
				if err != nil {
					t.Fatal(err)
				}
				db.Close()
				return path
			},
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T) string {
				parent := filepath.Join(t.TempDir(), "file")
				if err := os.WriteFile(parent, []byte("x"), 0644); err != nil {
					t.Fatal(err)
				}
				return filepath.Join(parent, "test.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			db, err := OpenDatabase(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var storageErr *StorageError
				if !errors.As(err, &storageErr) || storageErr.Op != "open" {
					t.Errorf("OpenDatabase() error = %v, want open *StorageError", err)
				}
				return
			}
			defer db.Close()

			if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS t (v INTEGER)`); err != nil {
				t.Errorf("database not writable: %v", err)
			}
			var fk int
			if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil || fk != 1 {
				t.Errorf("foreign_keys = %d, err = %v, want 1", fk, err)
			}
		})
	}
}
