package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/booking"
	"github.com/sakif/railbook/internal/model"
)

// TrainHandler serves the public train catalog endpoints. No authentication
// required — anyone can browse routes.
type TrainHandler struct {
	engine *booking.Engine
	logger *slog.Logger
}

// NewTrainHandler creates a TrainHandler.
func NewTrainHandler(engine *booking.Engine, logger *slog.Logger) *TrainHandler {
	return &TrainHandler{engine: engine, logger: logger}
}

// trainResponse is the wire form of a train in listings. The seat grid is
// omitted — it is booking detail, not catalog browsing data.
type trainResponse struct {
	ID           string            `json:"train_id"`
	Number       string            `json:"train_no"`
	Stations     []string          `json:"stations"`
	StationTimes map[string]string `json:"station_times,omitempty"`
}

func toTrainResponses(trains []model.Train) []trainResponse {
	out := make([]trainResponse, 0, len(trains))
	for _, t := range trains {
		out = append(out, trainResponse{
			ID:           t.ID,
			Number:       t.Number,
			Stations:     t.Stations,
			StationTimes: t.StationTimes,
		})
	}
	return out
}

// HandleList returns the full catalog.
//
// HTTP: GET /api/trains
func (h *TrainHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toTrainResponses(h.engine.ListTrains()))
}

// HandleSearch returns trains passing through both stations, in either
// order. Blank parameters yield an empty list, not an error — the strict
// direction check happens at booking time.
//
// HTTP: GET /api/trains/search?from=Delhi&to=Patna
func (h *TrainHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	matches := h.engine.SearchTrains(from, to)
	userID, _ := auth.UserIDFromContext(r.Context())
	h.logger.Debug("train search",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("matches", len(matches)),
		slog.String("userID", userID), // blank for anonymous callers
	)
	writeJSON(w, http.StatusOK, toTrainResponses(matches))
}
