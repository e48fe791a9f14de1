// Package vision wraps the vision-language model behind a gateway that
// always yields a usable analysis: unconfigured or failing calls fall
// back to a fixed demo analysis instead of erroring.
package vision

import (
	"context"

	"github.com/pattarin/treebank/internal/models"
)

// Source reports which path produced an analysis.
type Source string

const (
	SourceModel Source = "model"
	SourceMock  Source = "mock"
)

// Image is an uploaded tree photo.
type Image struct {
	Data []byte
	MIME string
}

// Analysis is the gateway's result envelope. Result is never nil.
// Warning is set when the mock path was taken because of a failure (as
// opposed to plain demo mode) and is meant to be shown to the user.
type Analysis struct {
	Result  *models.AnalysisResult `json:"result"`
	Source  Source                 `json:"source"`
	Warning string                 `json:"warning,omitempty"`
}

// Analyzer is the interface the rest of the application consumes.
type Analyzer interface {
	// Analyze identifies the tree in the image and assesses its health.
	Analyze(ctx context.Context, img Image, location string, enrich bool) Analysis
	// Chat answers a free-text tree-care question.
	Chat(ctx context.Context, message, treeContext string) string
}

// Resolver resolves species names to knowledge-base records.
type Resolver interface {
	Lookup(name string) models.SpeciesRecord
	All() []models.SpeciesRecord
	Native() []string
}
