// Package species implements the tree-species knowledge base: domain
// notes, care tips and carbon factors keyed by display name, used both
// to enrich vision-model prompts and to drive valuation.
package species

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pattarin/treebank/internal/apperr"
	"github.com/pattarin/treebank/internal/models"
	"github.com/pattarin/treebank/internal/storage"
)

// KnowledgeBase holds species records in insertion order. The order
// matters: ambiguous fuzzy lookups resolve to the first-inserted match
// and that tie-break must survive a save/load cycle.
type KnowledgeBase struct {
	mu      sync.RWMutex
	store   storage.Provider
	file    string
	records *orderedmap.OrderedMap[string, models.SpeciesRecord]
}

// New creates a knowledge base persisted at file under store, seeded
// with the built-in defaults. Call Load to merge persisted records.
func New(store storage.Provider, file string) *KnowledgeBase {
	return &KnowledgeBase{
		store:   store,
		file:    file,
		records: builtinDefaults(),
	}
}

// builtinDefaults returns the seeded species records.
func builtinDefaults() *orderedmap.OrderedMap[string, models.SpeciesRecord] {
	om := orderedmap.New[string, models.SpeciesRecord]()
	om.Set("Mango", models.SpeciesRecord{
		Name:           "Mango",
		ScientificName: "Mangifera indica",
		Notes: "Mango is a major perennial fruit tree of Thailand with many " +
			"cultivars such as Nam Dok Mai, Ok Rong and Khiao Sawoei. Feed with " +
			"15-15-15 fertilizer every three months and regulate watering to " +
			"trigger flowering.",
		CareTips: []string{
			"Prune after the harvest.",
			"Watch for anthracnose during the rainy season.",
			"Water consistently, especially while flowering.",
		},
		CarbonFactor:    12.5,
		ValueMultiplier: 1.2,
		Native:          true,
	})
	om.Set("Yang Na", models.SpeciesRecord{
		Name:           "Yang Na",
		ScientificName: "Dipterocarpus alatus",
		Notes: "Yang Na is a large perennial hardwood important to the local " +
			"ecosystem. It casts deep shade, sequesters carbon at a high rate, " +
			"and its fragrant timber is used in construction.",
		CareTips: []string{
			"Plant where the water table is high.",
			"Does not tolerate waterlogging.",
			"Needs full sun.",
		},
		CarbonFactor:    25.0,
		ValueMultiplier: 2.5,
		Native:          true,
	})
	return om
}

// Load merges persisted records over the built-in defaults. A persisted
// record wins whole-record on name collision; there is no field-level
// merge. When no file exists yet, the defaults are written as the
// initial file. A corrupt file leaves the defaults in place and returns
// the decode error so the caller can report it.
func (kb *KnowledgeBase) Load() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	data, err := kb.store.Read(kb.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return kb.persistLocked()
		}
		return err
	}

	persisted := orderedmap.New[string, models.SpeciesRecord]()
	if err := persisted.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("species: decode %s: %w", kb.file, err)
	}

	merged := builtinDefaults()
	for pair := persisted.Oldest(); pair != nil; pair = pair.Next() {
		merged.Set(pair.Key, pair.Value)
	}
	kb.records = merged
	return nil
}

// Lookup resolves a species name to a record. Resolution is total:
//
//  1. case-insensitive substring match against display names, in either
//     direction, scanning in insertion order (first-inserted wins on
//     ambiguity — deliberate, do not "improve");
//  2. the same against scientific names;
//  3. a synthesized in-memory default record, never persisted.
func (kb *KnowledgeBase) Lookup(name string) models.SpeciesRecord {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	query := strings.ToLower(name)
	for pair := kb.records.Oldest(); pair != nil; pair = pair.Next() {
		key := strings.ToLower(pair.Key)
		if strings.Contains(key, query) || strings.Contains(query, key) {
			return pair.Value
		}
	}
	for pair := kb.records.Oldest(); pair != nil; pair = pair.Next() {
		sci := strings.ToLower(pair.Value.ScientificName)
		if sci != "" && strings.Contains(sci, query) {
			return pair.Value
		}
	}
	return models.DefaultSpeciesRecord(name)
}

// AddOrReplace stores a record keyed by its display name, replacing any
// existing record entirely, and persists synchronously. A zero value
// multiplier is derived from the carbon factor relative to the
// reference factor.
func (kb *KnowledgeBase) AddOrReplace(rec models.SpeciesRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: species name is required", apperr.ErrInvalid)
	}
	if rec.CarbonFactor <= 0 {
		rec.CarbonFactor = models.ReferenceCarbonFactor
	}
	if rec.ValueMultiplier == 0 {
		rec.ValueMultiplier = rec.CarbonFactor / models.ReferenceCarbonFactor
	}
	if len(rec.CareTips) == 0 {
		rec.CareTips = []string{"Maintain according to local site conditions."}
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.records.Set(rec.Name, rec)
	return kb.persistLocked()
}

// Get returns the record stored under the exact display name.
func (kb *KnowledgeBase) Get(name string) (models.SpeciesRecord, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	rec, ok := kb.records.Get(name)
	return rec, ok
}

// All returns every record in insertion order.
func (kb *KnowledgeBase) All() []models.SpeciesRecord {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]models.SpeciesRecord, 0, kb.records.Len())
	for pair := kb.records.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Native returns the display names of native species in insertion order.
func (kb *KnowledgeBase) Native() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	var out []string
	for pair := kb.records.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Native {
			out = append(out, pair.Key)
		}
	}
	return out
}

func (kb *KnowledgeBase) persistLocked() error {
	data, err := kb.records.MarshalJSON()
	if err != nil {
		return fmt.Errorf("species: encode: %w", err)
	}
	// Keep the file human-editable.
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("species: indent: %w", err)
	}
	buf.WriteByte('\n')
	return kb.store.Write(kb.file, buf.Bytes())
}
