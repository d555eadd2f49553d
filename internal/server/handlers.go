package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/internal/registry"
	"github.com/kektech/cardbot/internal/router"
)

type routeRequest struct {
	Query          string            `json:"query"`
	RoomID         string            `json:"room_id"`
	AllowUncertain bool              `json:"allow_uncertain,omitempty"`
	BypassCache    bool              `json:"bypass_cache,omitempty"`
	Overrides      *router.Overrides `json:"overrides,omitempty"`
}

type routeResponse struct {
	RequestID string `json:"request_id"`
	*models.RouteResult
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	requestID := uuid.NewString()
	s.logger.Debug("route request",
		zap.String("request_id", requestID),
		zap.String("query", req.Query),
		zap.String("room_id", req.RoomID))

	result := s.router.Route(r.Context(), req.Query, models.SearchScope{RoomID: req.RoomID}, router.Options{
		AllowUncertain: req.AllowUncertain,
		BypassCache:    req.BypassCache,
		Overrides:      req.Overrides,
	})
	s.respondJSON(w, http.StatusOK, routeResponse{RequestID: requestID, RouteResult: result})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.respondError(w, http.StatusNotImplemented, "card registry not enabled")
		return
	}
	asset := chi.URLParam(r, "asset")
	card, ok := s.registry.Lookup(r.Context(), asset)
	if !ok {
		// Nav tokens like s4c12 resolve to the card at that position.
		if _, _, isNav := registry.ParseNavToken(strings.ToLower(asset)); isNav {
			card, ok = s.registry.ByNavToken(r.Context(), asset)
		}
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "card not found")
		return
	}
	s.respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpsertCard(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.respondError(w, http.StatusNotImplemented, "card registry not enabled")
		return
	}
	var card registry.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if card.Asset == "" {
		s.respondError(w, http.StatusBadRequest, "asset is required")
		return
	}
	s.logger.Debug("upsert card request", zap.String("asset", card.Asset))
	if err := s.registry.Upsert(r.Context(), card); err != nil {
		s.logger.Error("card upsert failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"asset": card.Asset, "status": "stored"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"response encoding failed"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
