package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/internal/membership"
	"github.com/wonny/freshness/pkg/logger"
)

// FreshnessHandler handles checkpoint recording and staleness queries
// ⭐ SSOT: 신선도 API 핸들러는 이 구조체에서만
type FreshnessHandler struct {
	registry        *freshness.Registry
	resolverTimeout time.Duration
	logger          *logger.Logger
}

// NewFreshnessHandler creates a new freshness handler
func NewFreshnessHandler(registry *freshness.Registry, resolverTimeout time.Duration, log *logger.Logger) *FreshnessHandler {
	return &FreshnessHandler{
		registry:        registry,
		resolverTimeout: resolverTimeout,
		logger:          log,
	}
}

// RecordEventRequest represents a checkpoint recording request
type RecordEventRequest struct {
	SubjectKind string `json:"subject_kind"` // "contract" or "product_group"
	SubjectID   string `json:"subject_id"`
	Event       string `json:"event"`
	At          string `json:"at,omitempty"` // RFC3339, defaults to now
}

// RecordEventResponse represents a checkpoint recording response
type RecordEventResponse struct {
	Status      string    `json:"status"`
	SubjectKind string    `json:"subject_kind"`
	SubjectID   string    `json:"subject_id"`
	Event       string    `json:"event"`
	At          time.Time `json:"at"`
}

// RecordEvent records a checkpoint completion
// POST /api/events
func (h *FreshnessHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SubjectID == "" || req.Event == "" {
		respondError(w, http.StatusBadRequest, "subject_id and event are required")
		return
	}

	at := time.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'at' timestamp (expected RFC3339)")
			return
		}
		at = parsed
	}

	switch req.SubjectKind {
	case "contract", "":
		req.SubjectKind = "contract"
		h.registry.RecordContractEvent(req.SubjectID, freshness.Event(req.Event), at)
	case "product_group":
		h.registry.RecordProductGroupEvent(req.SubjectID, freshness.Event(req.Event), at)
	default:
		respondError(w, http.StatusBadRequest, "subject_kind must be 'contract' or 'product_group'")
		return
	}

	respondJSON(w, http.StatusOK, RecordEventResponse{
		Status:      "recorded",
		SubjectKind: req.SubjectKind,
		SubjectID:   req.SubjectID,
		Event:       req.Event,
		At:          at,
	})
}

// StampsResponse represents a contract's recorded stamps
type StampsResponse struct {
	ContractID string                         `json:"contract_id"`
	Stamps     map[freshness.Event]*time.Time `json:"stamps"`
}

// GetStamps returns the last completion time per configured event
// GET /api/contracts/{id}/stamps
func (h *FreshnessHandler) GetStamps(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["id"]

	respondJSON(w, http.StatusOK, StampsResponse{
		ContractID: contractID,
		Stamps:     h.registry.GetStamps(contractID),
	})
}

// StaleEventsResponse represents a contract's stale checkpoints
type StaleEventsResponse struct {
	ContractID  string                 `json:"contract_id"`
	CheckedAt   time.Time              `json:"checked_at"`
	StaleEvents []freshness.StaleEntry `json:"stale_events"`
}

// GetStaleEvents returns the contract's stale checkpoints
// GET /api/contracts/{id}/stale
func (h *FreshnessHandler) GetStaleEvents(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["id"]

	now, ok := checkTime(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, StaleEventsResponse{
		ContractID:  contractID,
		CheckedAt:   now,
		StaleEvents: h.registry.StaleEvents(contractID, now),
	})
}

// CurrentResponse represents a currency verdict
type CurrentResponse struct {
	Subject   string    `json:"subject"`
	CheckedAt time.Time `json:"checked_at"`
	Current   bool      `json:"current"`
}

// GetIsCurrent returns whether the contract has no stale checkpoints
// GET /api/contracts/{id}/current
func (h *FreshnessHandler) GetIsCurrent(w http.ResponseWriter, r *http.Request) {
	contractID := mux.Vars(r)["id"]

	now, ok := checkTime(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, CurrentResponse{
		Subject:   contractID,
		CheckedAt: now,
		Current:   h.registry.IsCurrent(contractID, now),
	})
}

// GetGroupStaleness returns staleness for every contract in the group
// GET /api/groups/{group}/staleness
func (h *FreshnessHandler) GetGroupStaleness(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]

	now, ok := checkTime(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.resolverContext(r)
	defer cancel()

	staleness, err := h.registry.ProductGroupStaleness(ctx, group, now)
	if err != nil {
		h.respondResolverError(w, group, err)
		return
	}

	respondJSON(w, http.StatusOK, staleness)
}

// GetGroupIsCurrent returns the group-wide currency verdict
// GET /api/groups/{group}/current
func (h *FreshnessHandler) GetGroupIsCurrent(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]

	now, ok := checkTime(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.resolverContext(r)
	defer cancel()

	current, err := h.registry.ProductGroupIsCurrent(ctx, group, now)
	if err != nil {
		h.respondResolverError(w, group, err)
		return
	}

	respondJSON(w, http.StatusOK, CurrentResponse{
		Subject:   group,
		CheckedAt: now,
		Current:   current,
	})
}

// GetCurrencyReport returns the display-oriented report for the group
// GET /api/groups/{group}/report
func (h *FreshnessHandler) GetCurrencyReport(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]

	now, ok := checkTime(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.resolverContext(r)
	defer cancel()

	report, err := h.registry.CurrencyReport(ctx, group, now)
	if err != nil {
		h.respondResolverError(w, group, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// resolverContext bounds the membership lookup with the configured timeout
func (h *FreshnessHandler) resolverContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.resolverTimeout)
}

// respondResolverError maps resolver failures to 502, everything else to 500
func (h *FreshnessHandler) respondResolverError(w http.ResponseWriter, group string, err error) {
	h.logger.WithError(err).WithField("group", group).Error("Group staleness query failed")

	if errors.Is(err, membership.ErrUnavailable) {
		respondError(w, http.StatusBadGateway, "Membership resolver unavailable")
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to evaluate product group")
}

// checkTime reads the optional ?now=RFC3339 override, defaulting to now
func checkTime(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Now(), true
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'now' timestamp (expected RFC3339)")
		return time.Time{}, false
	}
	return parsed, true
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
