package models

// Cultural significance levels reported by the model. Only "high"
// affects valuation.
const (
	SignificanceLow    = "low"
	SignificanceMedium = "medium"
	SignificanceHigh   = "high"
)

// AnalysisResult is the structured output of a vision-model analysis.
// Section pointers are nil when the model response omitted them; the
// valuation engine treats that as a malformed payload.
type AnalysisResult struct {
	Species    *SpeciesInfo        `json:"species"`
	Health     *HealthAssessment   `json:"health_assessment"`
	Physical   *PhysicalAttributes `json:"physical_attributes"`
	Cultural   *CulturalInfo       `json:"cultural_info"`
	Enrichment *Enrichment         `json:"enrichment,omitempty"`
}

// SpeciesInfo identifies the tree in the image.
type SpeciesInfo struct {
	Name           string  `json:"name"`
	ScientificName string  `json:"scientific_name"`
	Confidence     float64 `json:"confidence"`
	Native         bool    `json:"is_native"`
}

// HealthAssessment scores the tree's condition from the image.
type HealthAssessment struct {
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations string   `json:"recommendations"`
	Urgency         string   `json:"urgency"`
}

// PhysicalAttributes are size estimates made from the image.
type PhysicalAttributes struct {
	HeightM         float64 `json:"height_estimate_m"`
	AgeYears        int     `json:"age_estimate_years"`
	CanopyWidthM    float64 `json:"canopy_width_m"`
	TrunkDiameterCM float64 `json:"trunk_diameter_cm"`
}

// CulturalInfo captures regional and traditional context.
type CulturalInfo struct {
	CommonRegions   []string `json:"common_in_regions"`
	TraditionalUses []string `json:"traditional_uses"`
	Significance    string   `json:"cultural_significance"`
}

// Enrichment is knowledge-base data attached to an analysis after a
// species lookup. When present, its CarbonFactor takes precedence over
// a fresh lookup during valuation.
type Enrichment struct {
	CarbonFactor float64  `json:"carbon_factor"`
	CareTips     []string `json:"care_tips"`
	Notes        string   `json:"notes"`
}

// ValuationReport is the environmental-value breakdown for one tree.
type ValuationReport struct {
	CarbonKgPerYear   float64 `json:"carbon_kg_per_year"`
	OxygenKgPerYear   float64 `json:"oxygen_kg_per_year"`
	CarbonValue       float64 `json:"carbon_value"`
	OxygenValue       float64 `json:"oxygen_value"`
	BiodiversityValue float64 `json:"biodiversity_value"`
	TotalValue        float64 `json:"total_value"`
	WaterRegulationLY float64 `json:"water_regulation_l_per_year"`
	MultiplierUsed    float64 `json:"multiplier_used"`
	CarbonFactorUsed  float64 `json:"carbon_factor_used"`
}
