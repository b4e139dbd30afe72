package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"leadwatch/crawler/internal/models"
	"leadwatch/crawler/internal/server/pagination"
	"leadwatch/crawler/internal/store"
)

const defaultLimit = 100
const maxLimit = 1000

// ListResponse is the payload for the opportunities listing endpoint.
type ListResponse struct {
	Items      []models.Opportunity `json:"items"`
	NextCursor *string              `json:"next_cursor,omitempty"`
}

// OpportunitiesHandler serves the opportunity endpoints.
type OpportunitiesHandler struct {
	repo *store.Repository
}

// NewOpportunitiesHandler creates a new handler instance.
func NewOpportunitiesHandler(repo *store.Repository) *OpportunitiesHandler {
	return &OpportunitiesHandler{repo: repo}
}

// List handles filtered, cursor-paginated opportunity listings ordered by
// score descending.
func (h *OpportunitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Processing opportunities request")

	query := r.URL.Query()

	limit := defaultLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 || parsedLimit > maxLimit {
			log.Warn().Err(err).Str("limit", limitStr).Msg("Invalid 'limit' parameter value")
			http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: must be between 1 and %d", maxLimit), http.StatusBadRequest)
			return
		}
		limit = parsedLimit
	}

	filter := store.Filter{
		Status:     query.Get("status"),
		Subreddit:  query.Get("subreddit"),
		ActionType: query.Get("action_type"),
		Limit:      limit + 1, // Fetch one extra to detect a next page.
	}

	if minScoreStr := query.Get("min_score"); minScoreStr != "" {
		minScore, err := strconv.ParseFloat(minScoreStr, 64)
		if err != nil || minScore < 0 || minScore > 100 {
			log.Warn().Err(err).Str("min_score", minScoreStr).Msg("Invalid 'min_score' parameter value")
			http.Error(w, "Invalid 'min_score' parameter: must be between 0 and 100", http.StatusBadRequest)
			return
		}
		filter.MinScore = minScore
	}

	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		log.Warn().Str("status", filter.Status).Msg("Invalid 'status' parameter value")
		http.Error(w, "Invalid 'status' parameter: use new, queued, processed or ignored", http.StatusBadRequest)
		return
	}

	var cursorScore *float64
	var cursorThreadID *string
	if cursorStr := query.Get("cursor"); cursorStr != "" {
		score, threadID, err := pagination.DecodeCursor(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			http.Error(w, "Invalid 'cursor' parameter", http.StatusBadRequest)
			return
		}
		cursorScore = &score
		cursorThreadID = &threadID
	}

	items, err := h.repo.Page(r.Context(), filter, cursorScore, cursorThreadID)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching opportunities from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var nextCursorStr *string
	if len(items) > limit {
		items = items[:limit]
		if len(items) > 0 {
			lastItem := items[len(items)-1]
			cursor := pagination.EncodeCursor(lastItem.Score, lastItem.ThreadID)
			nextCursorStr = &cursor
		}
	}

	writeJSON(w, r, http.StatusOK, ListResponse{
		Items:      items,
		NextCursor: nextCursorStr,
	})
}

// statusUpdateRequest is the body accepted by UpdateStatus.
type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles operator status transitions for one opportunity.
func (h *OpportunitiesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	threadID := r.PathValue("id")
	if threadID == "" {
		http.Error(w, "Missing thread id", http.StatusBadRequest)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Invalid status update body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidStatus(req.Status) {
		http.Error(w, "Invalid status: use new, queued, processed or ignored", http.StatusBadRequest)
		return
	}

	updated, err := h.repo.UpdateStatus(r.Context(), threadID, req.Status)
	if err != nil {
		log.Error().Err(err).Str("thread_id", threadID).Msg("Error updating opportunity status")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !updated {
		http.Error(w, "Opportunity not found", http.StatusNotFound)
		return
	}

	log.Info().
		Str("thread_id", threadID).
		Str("status", req.Status).
		Msg("Opportunity status updated")
	writeJSON(w, r, http.StatusOK, map[string]string{
		"thread_id": threadID,
		"status":    req.Status,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	log := hlog.FromRequest(r)

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body to client")
	}
}
