package vision

import "github.com/pattarin/treebank/internal/models"

// Canned gateway replies for demo mode and chat failures.
const (
	demoChatReply = "I'm running in demo mode without a model credential. " +
		"In the full version I'd give personalized care advice for your trees."
	apologyChatReply = "I apologize, but I'm having trouble reaching the " +
		"assistant right now. Please try again in a moment."
)

// MockAnalysis returns the fixed demo analysis used when the model is
// unconfigured or fails. It exercises the downstream pipeline exactly
// like a real response: a healthy native mango with two minor issues.
func MockAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Species: &models.SpeciesInfo{
			Name:           "Mango",
			ScientificName: "Mangifera indica",
			Confidence:     0.92,
			Native:         true,
		},
		Health: &models.HealthAssessment{
			Score:           85,
			Issues:          []string{"Minor leaf spots", "Slight nutrient deficiency"},
			Recommendations: "Apply balanced fertilizer and ensure adequate sunlight. Water deeply once weekly.",
			Urgency:         "medium",
		},
		Physical: &models.PhysicalAttributes{
			HeightM:         2.5,
			AgeYears:        3,
			CanopyWidthM:    3.0,
			TrunkDiameterCM: 15.0,
		},
		Cultural: &models.CulturalInfo{
			CommonRegions:   []string{"Central Thailand", "Northern Thailand"},
			TraditionalUses: []string{"Edible fruit", "Shade and timber"},
			Significance:    models.SignificanceHigh,
		},
	}
}

// attachEnrichment copies knowledge-base data for the identified
// species onto the analysis so valuation can prefer its carbon factor.
func attachEnrichment(a *models.AnalysisResult, kb Resolver) {
	if kb == nil || a == nil || a.Species == nil {
		return
	}
	rec := kb.Lookup(a.Species.Name)
	a.Enrichment = &models.Enrichment{
		CarbonFactor: rec.CarbonFactor,
		CareTips:     rec.CareTips,
		Notes:        rec.Notes,
	}
}
