// Package treeservice coordinates the analysis pipeline: vision
// gateway, valuation engine, knowledge base and portfolio store.
package treeservice

import (
	"context"

	"github.com/pattarin/treebank/internal/models"
	"github.com/pattarin/treebank/internal/portfolio"
	"github.com/pattarin/treebank/internal/species"
	"github.com/pattarin/treebank/internal/valuation"
	"github.com/pattarin/treebank/internal/vision"
)

// Events receives domain events for live UI refresh. Implementations
// must not block.
type Events interface {
	PublishTreeEvent(kind string, data any)
	PublishSpeciesEvent(name string)
}

// Service wires the core components together.
type Service struct {
	kb       *species.KnowledgeBase
	trees    *portfolio.Store
	analyzer vision.Analyzer
	events   Events // may be nil
}

// NewService creates a service. events may be nil when no live updates
// are needed (tests, MCP mode).
func NewService(kb *species.KnowledgeBase, trees *portfolio.Store, analyzer vision.Analyzer, events Events) *Service {
	return &Service{kb: kb, trees: trees, analyzer: analyzer, events: events}
}

// AnalysisOutcome bundles an analysis with its valuation. Outcome
// distinguishes a computed valuation from the masked-failure fallback.
type AnalysisOutcome struct {
	Analysis  vision.Analysis        `json:"analysis"`
	Valuation models.ValuationReport `json:"valuation"`
	Outcome   valuation.Outcome      `json:"valuation_outcome"`
}

// AnalyzeImage runs the full pipeline short of persistence: model (or
// mock) analysis, then valuation against the knowledge base.
func (s *Service) AnalyzeImage(ctx context.Context, img vision.Image, location string, enrich bool) AnalysisOutcome {
	analysis := s.analyzer.Analyze(ctx, img, location, enrich)
	report, outcome := valuation.Compute(analysis.Result, s.kb)
	return AnalysisOutcome{Analysis: analysis, Valuation: report, Outcome: outcome}
}

// SaveTree persists an analyzed tree into the portfolio.
func (s *Service) SaveTree(_ context.Context, in portfolio.TreeInput) (models.TreeRecord, error) {
	rec, err := s.trees.Add(in)
	if err != nil {
		return rec, err
	}
	if s.events != nil {
		s.events.PublishTreeEvent("tree.created", rec)
	}
	return rec, nil
}

// Trees returns all portfolio trees.
func (s *Service) Trees(_ context.Context) []models.TreeRecord {
	return s.trees.List()
}

// Tree returns one tree by id.
func (s *Service) Tree(_ context.Context, id int) (models.TreeRecord, bool) {
	return s.trees.Get(id)
}

// AddCareLog appends a care entry to a tree.
func (s *Service) AddCareLog(_ context.Context, id int, activity, notes string) (models.TreeRecord, error) {
	rec, err := s.trees.AddCareLog(id, activity, notes)
	if err != nil {
		return rec, err
	}
	if s.events != nil {
		s.events.PublishTreeEvent("carelog.added", rec)
	}
	return rec, nil
}

// Statistics recomputes portfolio aggregates.
func (s *Service) Statistics(_ context.Context) models.Statistics {
	return s.trees.Statistics()
}

// Export returns the portfolio with export metadata.
func (s *Service) Export(_ context.Context) portfolio.ExportDocument {
	return s.trees.Export()
}

// Chat forwards a free-text care question to the model gateway.
func (s *Service) Chat(ctx context.Context, message, treeContext string) string {
	return s.analyzer.Chat(ctx, message, treeContext)
}

// ListSpecies returns every knowledge-base record in insertion order.
func (s *Service) ListSpecies(_ context.Context) []models.SpeciesRecord {
	return s.kb.All()
}

// NativeSpecies returns native species names in insertion order.
func (s *Service) NativeSpecies(_ context.Context) []string {
	return s.kb.Native()
}

// GetSpecies returns the record stored under the exact display name.
func (s *Service) GetSpecies(_ context.Context, name string) (models.SpeciesRecord, bool) {
	return s.kb.Get(name)
}

// ResolveSpecies performs the total fuzzy lookup.
func (s *Service) ResolveSpecies(_ context.Context, name string) models.SpeciesRecord {
	return s.kb.Lookup(name)
}

// AddSpecies stores a species record, replacing any existing one.
func (s *Service) AddSpecies(_ context.Context, rec models.SpeciesRecord) error {
	if err := s.kb.AddOrReplace(rec); err != nil {
		return err
	}
	if s.events != nil {
		s.events.PublishSpeciesEvent(rec.Name)
	}
	return nil
}
