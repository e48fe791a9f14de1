// Package models defines the domain types for Treebank.
package models

// SpeciesRecord is a knowledge-base entry for one tree species. It
// enriches vision-model prompts and drives the valuation formula.
type SpeciesRecord struct {
	Name            string   `json:"name"`
	ScientificName  string   `json:"scientific_name"`
	Notes           string   `json:"notes"`
	CareTips        []string `json:"care_tips"`
	CarbonFactor    float64  `json:"carbon_factor"`
	ValueMultiplier float64  `json:"value_multiplier"`
	Native          bool     `json:"is_native"`
}

// ReferenceCarbonFactor is the carbon factor assigned to species the
// knowledge base has no record for (kg CO2/year at reference height).
const ReferenceCarbonFactor = 15.0

// DefaultSpeciesRecord synthesizes an in-memory record for an unknown
// species. It is never persisted.
func DefaultSpeciesRecord(name string) SpeciesRecord {
	return SpeciesRecord{
		Name:            name,
		ScientificName:  "",
		Notes:           name + " is a perennial tree of unconfirmed species.",
		CareTips:        []string{"Maintain according to local site conditions."},
		CarbonFactor:    ReferenceCarbonFactor,
		ValueMultiplier: 1.0,
		Native:          false,
	}
}
