package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pattarin/treebank/internal/apperr"
	"github.com/pattarin/treebank/internal/portfolio"
	"github.com/pattarin/treebank/internal/treeservice"
	"github.com/pattarin/treebank/internal/vision"
)

const maxImageBytes = 10 << 20 // 10 MB

// Handler holds API route handlers.
type Handler struct {
	svc *treeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *treeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// treeID extracts the numeric tree id from the URL.
func treeID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// AnalyzeTree handles POST /api/analyze.
//
//	@Summary		Analyze an uploaded tree photo
//	@Tags			analysis
//	@Accept			mpfd
//	@Produce		json
//	@Param			image		formData	file	true	"Tree photo"
//	@Param			location	formData	string	false	"Free-text location hint"
//	@Param			enrich		formData	bool	false	"Enrich the prompt with species notes"
//	@Success		200	{object}	treeservice.AnalysisOutcome
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analyze [post]
func (h *Handler) AnalyzeTree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("image too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'image' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read image"))
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	enrich := true
	if v := r.FormValue("enrich"); v != "" {
		enrich, _ = strconv.ParseBool(v)
	}

	outcome := h.svc.AnalyzeImage(r.Context(), vision.Image{Data: data, MIME: mime}, r.FormValue("location"), enrich)
	writeJSON(w, http.StatusOK, outcome)
}

// CreateTree handles POST /api/trees.
//
//	@Summary		Save an analyzed tree into the portfolio
//	@Tags			trees
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTreeRequest	true	"Tree to save"
//	@Success		201		{object}	models.TreeRecord
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trees [post]
func (h *Handler) CreateTree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := h.svc.SaveTree(r.Context(), portfolio.TreeInput{
		Name:               req.Name,
		Species:            req.Species,
		ScientificName:     req.ScientificName,
		HealthScore:        req.HealthScore,
		EnvironmentalValue: req.EnvironmentalValue,
		Location:           req.Location,
		Notes:              req.Notes,
	})
	if err != nil {
		// The record is kept in memory; the session can retry the save.
		slog.Error("save tree failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to persist portfolio"))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListTrees handles GET /api/trees.
//
//	@Summary		List portfolio trees
//	@Tags			trees
//	@Produce		json
//	@Success		200	{object}	TreeListResponse
//	@Security		BearerAuth
//	@Router			/trees [get]
func (h *Handler) ListTrees(w http.ResponseWriter, r *http.Request) {
	trees := h.svc.Trees(r.Context())
	writeJSON(w, http.StatusOK, TreeListResponse{Trees: trees, Total: len(trees)})
}

// GetTree handles GET /api/trees/{id}.
//
//	@Summary		Get a single tree by id
//	@Tags			trees
//	@Produce		json
//	@Param			id	path		int	true	"Tree id"
//	@Success		200	{object}	models.TreeRecord
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trees/{id} [get]
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	id, err := treeID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid tree id"))
		return
	}
	rec, ok := h.svc.Tree(r.Context(), id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AddCareLog handles POST /api/trees/{id}/care-logs.
//
//	@Summary		Append a care log to a tree
//	@Tags			trees
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Tree id"
//	@Param			body	body		CareLogRequest	true	"Care activity"
//	@Success		200		{object}	models.TreeRecord
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trees/{id}/care-logs [post]
func (h *Handler) AddCareLog(w http.ResponseWriter, r *http.Request) {
	id, err := treeID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid tree id"))
		return
	}
	var req CareLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := h.svc.AddCareLog(r.Context(), id, req.Activity, req.Notes)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("add care log failed", slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Statistics handles GET /api/statistics.
//
//	@Summary		Portfolio aggregate statistics
//	@Tags			trees
//	@Produce		json
//	@Success		200	{object}	models.Statistics
//	@Security		BearerAuth
//	@Router			/statistics [get]
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Statistics(r.Context()))
}

// Export handles GET /api/export.
//
//	@Summary		Download the portfolio with export metadata
//	@Tags			trees
//	@Produce		json
//	@Success		200	{object}	portfolio.ExportDocument
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="treebank-export.json"`)
	writeJSON(w, http.StatusOK, h.svc.Export(r.Context()))
}

// ListSpecies handles GET /api/species.
//
//	@Summary		List knowledge-base species records
//	@Tags			species
//	@Produce		json
//	@Success		200	{object}	SpeciesListResponse
//	@Security		BearerAuth
//	@Router			/species [get]
func (h *Handler) ListSpecies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SpeciesListResponse{Species: h.svc.ListSpecies(r.Context())})
}

// NativeSpecies handles GET /api/species/native.
//
//	@Summary		List native species names
//	@Tags			species
//	@Produce		json
//	@Success		200	{object}	NativeSpeciesResponse
//	@Security		BearerAuth
//	@Router			/species/native [get]
func (h *Handler) NativeSpecies(w http.ResponseWriter, r *http.Request) {
	native := h.svc.NativeSpecies(r.Context())
	if native == nil {
		native = []string{}
	}
	writeJSON(w, http.StatusOK, NativeSpeciesResponse{Native: native})
}

// ResolveSpecies handles GET /api/species/resolve.
//
//	@Summary		Resolve a species name (total: always returns a record)
//	@Tags			species
//	@Produce		json
//	@Param			name	query		string	true	"Species name to resolve"
//	@Success		200		{object}	models.SpeciesRecord
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/species/resolve [get]
func (h *Handler) ResolveSpecies(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ResolveSpecies(r.Context(), name))
}

// CreateSpecies handles POST /api/species.
//
//	@Summary		Add or replace a species record
//	@Tags			species
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SpeciesRequest	true	"Species record"
//	@Success		201		{object}	models.SpeciesRecord
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/species [post]
func (h *Handler) CreateSpecies(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SpeciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := h.svc.AddSpecies(r.Context(), req.Record()); err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("add species failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	rec, _ := h.svc.GetSpecies(r.Context(), req.Name)
	writeJSON(w, http.StatusCreated, rec)
}

// Chat handles POST /api/chat.
//
//	@Summary		Ask the care assistant a question
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Question"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: h.svc.Chat(r.Context(), req.Message, req.TreeContext)})
}
