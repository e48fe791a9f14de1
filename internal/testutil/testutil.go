// Package testutil provides shared test helpers for setting up data
// directories, knowledge bases and portfolios.
package testutil

import (
	"testing"

	"github.com/pattarin/treebank/internal/portfolio"
	"github.com/pattarin/treebank/internal/species"
	"github.com/pattarin/treebank/internal/storage"
)

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestKB creates a loaded knowledge base (built-in defaults) backed by
// the given provider.
func TestKB(t *testing.T, store storage.Provider) *species.KnowledgeBase {
	t.Helper()
	kb := species.New(store, "species.json")
	if err := kb.Load(); err != nil {
		t.Fatal(err)
	}
	return kb
}

// TestPortfolio creates a loaded empty portfolio backed by the given
// provider.
func TestPortfolio(t *testing.T, store storage.Provider) *portfolio.Store {
	t.Helper()
	p := portfolio.New(store, "portfolio.json")
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	return p
}
