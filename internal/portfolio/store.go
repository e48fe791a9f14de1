// Package portfolio implements the persistent tree collection.
package portfolio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pattarin/treebank/internal/apperr"
	"github.com/pattarin/treebank/internal/models"
	"github.com/pattarin/treebank/internal/storage"
)

// DocumentVersion is written into every persisted portfolio file.
const DocumentVersion = "1.0"

// Store is the append-only tree collection backed by a single JSON
// document. Every mutation persists the whole document atomically;
// concurrent writers are last-writer-wins by design.
type Store struct {
	mu    sync.Mutex
	store storage.Provider
	file  string
	trees []models.TreeRecord
}

// New creates a portfolio store persisted at file under store.
func New(store storage.Provider, file string) *Store {
	return &Store{store: store, file: file}
}

// Load reads the persisted portfolio. A missing file yields an empty
// portfolio; the skeleton document is written lazily on the first save.
// A corrupt file is recovered as an empty portfolio and the decode
// error is returned so the caller can report it.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc models.PortfolioDocument
	if err := storage.ReadJSON(s.store, s.file, &doc); err != nil {
		s.trees = nil
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("portfolio: load: %w", err)
	}
	s.trees = doc.Trees
	return nil
}

// TreeInput is the caller-supplied part of a new tree record.
type TreeInput struct {
	Name               string
	Species            string
	ScientificName     string
	HealthScore        int
	EnvironmentalValue float64
	Location           string
	Notes              string
}

// Add appends a tree to the portfolio and persists it. The id is
// count+1 at insert time; correct for the single-writer, no-deletion
// workload this store supports. On a persist failure the record stays
// in memory (and is returned along with the error) so a later save can
// retry.
func (s *Store) Add(in TreeInput) (models.TreeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := in.Name
	if name == "" {
		name = "Unknown Tree"
	}
	species := in.Species
	if species == "" {
		species = "Unknown"
	}

	now := time.Now()
	id := len(s.trees) + 1
	rec := models.TreeRecord{
		ID:                 id,
		DisplayID:          fmt.Sprintf("TREE-%04d", id),
		Name:               name,
		Species:            species,
		ScientificName:     in.ScientificName,
		HealthScore:        in.HealthScore,
		EnvironmentalValue: in.EnvironmentalValue,
		DateAdded:          now,
		LastCheckup:        now,
		Location:           in.Location,
		Notes:              in.Notes,
		CareLogs:           []models.CareLogEntry{},
	}
	s.trees = append(s.trees, rec)
	return rec, s.persistLocked()
}

// AddCareLog appends a care entry to the tree with the given id and
// bumps its last checkup date. Unknown ids return apperr.ErrNotFound
// without touching the portfolio file.
func (s *Store) AddCareLog(id int, activity, notes string) (models.TreeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trees {
		if s.trees[i].ID != id {
			continue
		}
		now := time.Now()
		s.trees[i].CareLogs = append(s.trees[i].CareLogs, models.CareLogEntry{
			Date:     now,
			Activity: activity,
			Notes:    notes,
		})
		s.trees[i].LastCheckup = now
		return s.trees[i], s.persistLocked()
	}
	return models.TreeRecord{}, fmt.Errorf("portfolio: tree %d: %w", id, apperr.ErrNotFound)
}

// Get returns the tree with the given id.
func (s *Store) Get(id int) (models.TreeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trees {
		if t.ID == id {
			return t, true
		}
	}
	return models.TreeRecord{}, false
}

// List returns all trees in insertion order.
func (s *Store) List() []models.TreeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TreeRecord, len(s.trees))
	copy(out, s.trees)
	return out
}

// Statistics recomputes portfolio aggregates. The carbon estimate is
// total value divided by the carbon price; biodiversity value is mixed
// into the total, so this is an approximation, not a true inverse.
func (s *Store) Statistics() models.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.trees) == 0 {
		return models.Statistics{}
	}

	var stats models.Statistics
	stats.TotalTrees = len(s.trees)
	var healthSum float64
	for _, t := range s.trees {
		stats.TotalValue += t.EnvironmentalValue
		healthSum += float64(t.HealthScore)
	}
	stats.AvgHealth = healthSum / float64(len(s.trees))
	stats.TotalCarbon = stats.TotalValue / 30
	return stats
}

// ExportDocument is the payload for a portfolio download.
type ExportDocument struct {
	Trees    []models.TreeRecord `json:"trees"`
	Metadata ExportMetadata      `json:"metadata"`
}

// ExportMetadata describes an export.
type ExportMetadata struct {
	ExportDate time.Time `json:"export_date"`
	Version    string    `json:"version"`
}

// Export returns the portfolio with export metadata attached.
func (s *Store) Export() ExportDocument {
	trees := s.List()
	return ExportDocument{
		Trees: trees,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			Version:    DocumentVersion,
		},
	}
}

func (s *Store) persistLocked() error {
	doc := models.PortfolioDocument{
		Trees:       s.trees,
		Users:       []any{},
		LastUpdated: time.Now(),
		Version:     DocumentVersion,
	}
	if doc.Trees == nil {
		doc.Trees = []models.TreeRecord{}
	}
	if err := storage.WriteJSON(s.store, s.file, doc); err != nil {
		return fmt.Errorf("portfolio: save: %w", err)
	}
	return nil
}
