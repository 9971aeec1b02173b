package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobscout-za/jobscout/internal/aggregator"
	"github.com/jobscout-za/jobscout/internal/model"
	"github.com/jobscout-za/jobscout/internal/region"
)

type errorResponse struct {
	Error string `json:"error"`
}

type regionsResponse struct {
	Regions []region.Region `json:"regions"`
}

type townsResponse struct {
	Region string   `json:"region"`
	Towns  []string `json:"towns"`
}

// searchParams are the accepted /search query parameters.
type searchParams struct {
	Keywords string `query:"q" validate:"max=200"`
	Region   string `query:"region" validate:"required,max=64"`
	Town     string `query:"town" validate:"omitempty,max=64"`
	Report   bool   `query:"report"`
}

type searchResponse struct {
	Location  string                    `json:"location"`
	ScrapedAt time.Time                 `json:"scraped_at"`
	Count     int                       `json:"count"`
	Listings  []model.Listing           `json:"listings"`
	Sources   []aggregator.SourceReport `json:"sources,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, regionsResponse{Regions: region.Regions()})
}

func (s *Server) handleTowns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "region")
	towns, err := region.ListTowns(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, townsResponse{Region: region.Normalize(id), Towns: towns})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := searchParams{
		Keywords: strings.TrimSpace(q.Get("q")),
		Region:   strings.TrimSpace(q.Get("region")),
		Town:     strings.TrimSpace(q.Get("town")),
		Report:   isTrue(q.Get("report")),
	}
	if err := s.validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := s.searcher.SearchWithReport(r.Context(), params.Keywords, params.Region, params.Town)
	switch {
	case errors.Is(err, model.ErrUnknownRegion):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, model.ErrUnknownTown):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "search cancelled")
		return
	case err != nil:
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := searchResponse{
		Location:  res.Location,
		ScrapedAt: res.ScrapedAt,
		Count:     len(res.Listings),
		Listings:  res.Listings,
	}
	if params.Report {
		resp.Sources = res.Sources
	}
	writeJSON(w, http.StatusOK, resp)
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// validationMessage renders the first failed rule as a short sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
