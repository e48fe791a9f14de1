package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pattarin/treebank/internal/models"
)

// CreateTreeRequest is the request body for saving an analyzed tree.
type CreateTreeRequest struct {
	Name               string  `json:"name" example:"Backyard mango"`
	Species            string  `json:"species" example:"Mango"`
	ScientificName     string  `json:"scientific_name" example:"Mangifera indica"`
	HealthScore        int     `json:"health_score" example:"85"`
	EnvironmentalValue float64 `json:"environmental_value" example:"1210"`
	Location           string  `json:"location" example:"back garden"`
	Notes              string  `json:"notes" example:"planted 2021"`
}

// Validate validates the request ranges. Names are optional: the
// portfolio substitutes its defaults.
func (r CreateTreeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.HealthScore, validation.Min(0), validation.Max(100)),
		validation.Field(&r.EnvironmentalValue, validation.Min(0.0)),
	)
}

// CareLogRequest is the request body for appending a care log.
type CareLogRequest struct {
	Activity string `json:"activity" example:"watering" validate:"required"`
	Notes    string `json:"notes" example:"deep soak"`
}

// Validate validates the request.
func (r CareLogRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Activity, validation.Required),
	)
}

// SpeciesRequest is the request body for adding or replacing a
// knowledge-base record.
type SpeciesRequest struct {
	Name            string   `json:"name" example:"Teak" validate:"required"`
	ScientificName  string   `json:"scientific_name" example:"Tectona grandis"`
	Notes           string   `json:"notes"`
	CareTips        []string `json:"care_tips"`
	CarbonFactor    float64  `json:"carbon_factor" example:"20"`
	ValueMultiplier float64  `json:"value_multiplier" example:"1.33"`
	Native          bool     `json:"is_native" example:"true"`
}

// Validate validates the request.
func (r SpeciesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.CarbonFactor, validation.Min(0.0)),
	)
}

// Record converts the request into a domain record.
func (r SpeciesRequest) Record() models.SpeciesRecord {
	return models.SpeciesRecord{
		Name:            r.Name,
		ScientificName:  r.ScientificName,
		Notes:           r.Notes,
		CareTips:        r.CareTips,
		CarbonFactor:    r.CarbonFactor,
		ValueMultiplier: r.ValueMultiplier,
		Native:          r.Native,
	}
}

// ChatRequest is the request body for the care chat.
type ChatRequest struct {
	Message     string `json:"message" example:"How often should I water a young mango?" validate:"required"`
	TreeContext string `json:"tree_context" example:"TREE-0001, health 85"`
}

// Validate validates the request.
func (r ChatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
	)
}

// ChatResponse wraps a chat reply.
type ChatResponse struct {
	Reply string `json:"reply" validate:"required"`
}

// TreeListResponse wraps the portfolio listing.
type TreeListResponse struct {
	Trees []models.TreeRecord `json:"trees" validate:"required"`
	Total int                 `json:"total" example:"4" validate:"required"`
}

// SpeciesListResponse wraps knowledge-base listings.
type SpeciesListResponse struct {
	Species []models.SpeciesRecord `json:"species" validate:"required"`
}

// NativeSpeciesResponse wraps the native-species name listing.
type NativeSpeciesResponse struct {
	Native []string `json:"native" validate:"required"`
}
