// Package valuation computes the heuristic environmental value of an
// analyzed tree.
package valuation

import "github.com/pattarin/treebank/internal/models"

// Valuation constants. Prices are currency-per-kg; the oxygen ratio is
// a fixed photosynthesis constant.
const (
	OxygenRatio          = 0.73
	CarbonPricePerKg     = 30.0
	OxygenPricePerKg     = 20.0
	NativeMultiplier     = 1.5
	SignificanceBonus    = 1.2
	NativeBiodiversity   = 200.0
	BaselineBiodiversity = 50.0
	WaterRegulationRatio = 100.0
)

// Outcome reports which path produced a report, so callers and tests
// can tell a computed answer that happens to equal the fallback from an
// actual fallback.
type Outcome string

const (
	OutcomeComputed Outcome = "computed"
	OutcomeFallback Outcome = "fallback"
)

// Resolver resolves a species name to its knowledge-base record.
type Resolver interface {
	Lookup(name string) models.SpeciesRecord
}

// FallbackReport returns the fixed report used when an analysis payload
// is malformed. Masking bad model output with a usable value instead of
// failing is a deliberate policy; the Outcome marks that it happened.
func FallbackReport() models.ValuationReport {
	return models.ValuationReport{
		CarbonKgPerYear:   25,
		OxygenKgPerYear:   18,
		CarbonValue:       750,
		OxygenValue:       360,
		BiodiversityValue: 100,
		TotalValue:        1210,
		WaterRegulationLY: 2500,
		MultiplierUsed:    1.0,
		CarbonFactorUsed:  models.ReferenceCarbonFactor,
	}
}

// Compute derives the environmental-value report for an analysis.
//
// The carbon factor attached by a prior knowledge-base lookup (the
// enrichment block) takes precedence over a fresh lookup. Carbon
// scaling is anchored so a 2 m reference tree yields exactly its
// species factor; non-positive heights yield zero, not an error.
// A payload missing any required section yields FallbackReport with
// OutcomeFallback — never an error.
func Compute(analysis *models.AnalysisResult, kb Resolver) (models.ValuationReport, Outcome) {
	if analysis == nil || analysis.Species == nil || analysis.Physical == nil || analysis.Cultural == nil {
		return FallbackReport(), OutcomeFallback
	}

	factor := models.ReferenceCarbonFactor
	switch {
	case analysis.Enrichment != nil && analysis.Enrichment.CarbonFactor > 0:
		factor = analysis.Enrichment.CarbonFactor
	case kb != nil:
		factor = kb.Lookup(analysis.Species.Name).CarbonFactor
	}

	carbonKg := 0.0
	if h := analysis.Physical.HeightM; h > 0 {
		carbonKg = factor * (h / 2.0)
	}
	oxygenKg := carbonKg * OxygenRatio

	multiplier := 1.0
	if analysis.Species.Native {
		multiplier *= NativeMultiplier
	}
	if analysis.Cultural.Significance == models.SignificanceHigh {
		multiplier *= SignificanceBonus
	}

	carbonValue := carbonKg * CarbonPricePerKg * multiplier
	oxygenValue := oxygenKg * OxygenPricePerKg * multiplier

	biodiversity := BaselineBiodiversity
	if analysis.Species.Native {
		biodiversity = NativeBiodiversity
	}

	return models.ValuationReport{
		CarbonKgPerYear:   carbonKg,
		OxygenKgPerYear:   oxygenKg,
		CarbonValue:       carbonValue,
		OxygenValue:       oxygenValue,
		BiodiversityValue: biodiversity,
		TotalValue:        carbonValue + oxygenValue + biodiversity,
		WaterRegulationLY: carbonKg * WaterRegulationRatio,
		MultiplierUsed:    multiplier,
		CarbonFactorUsed:  factor,
	}, OutcomeComputed
}
