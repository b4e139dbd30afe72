package engine

import (
	"path/filepath"
	"testing"

	"leadwatch/crawler/internal/catalog"
	"leadwatch/crawler/internal/database"
)

// newTestCatalog opens a throwaway database and returns a catalog over it.
// The default dataset is seeded lazily on first access.
func newTestCatalog(t *testing.T) (*catalog.Catalog, *database.DB) {
	t.Helper()

	db, err := database.NewDB(database.NewConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return catalog.New(db), db
}
