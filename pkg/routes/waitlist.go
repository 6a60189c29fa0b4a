package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog/hlog"

	"github.com/thankyoudiscord/waitlist/pkg/models"
	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

// StatsCache is the read-through cache in front of Service.Stats.
type StatsCache interface {
	Get(ctx context.Context) (*waitlist.Stats, error)
	Set(ctx context.Context, stats waitlist.Stats) error
	Invalidate(ctx context.Context) error
}

type WaitlistRoutes struct {
	service    *waitlist.Service
	publicURL  string
	statsCache StatsCache
}

// NewWaitlistRoutes wires the waitlist handlers. statsCache may be nil.
func NewWaitlistRoutes(service *waitlist.Service, publicURL string, statsCache StatsCache) *WaitlistRoutes {
	return &WaitlistRoutes{
		service:    service,
		publicURL:  publicURL,
		statsCache: statsCache,
	}
}

func (wr WaitlistRoutes) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/join", wr.Join)
	r.Get("/entries", wr.Recall)
	r.Get("/stats", wr.Stats)

	return r
}

func (wr WaitlistRoutes) Join(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string  `json:"email"`
		Referrer *string `json:"referrer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Failed to parse JSON payload")
		return
	}

	// a ?ref= on the request is the share link landing straight on the API
	referrer := r.URL.Query().Get("ref")
	if body.Referrer != nil && strings.TrimSpace(*body.Referrer) != "" {
		referrer = *body.Referrer
	}

	out, err := wr.service.Join(r.Context(), body.Email, referrer)
	if err != nil {
		wr.respondServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if out.Kind == waitlist.Created {
		status = http.StatusCreated
		wr.invalidateStats(r)
	}

	payload := models.NewJoinPayload(out, wr.publicURL)
	wr.setProgress(r, &payload.EntryPayload)
	respondJSON(w, status, payload)
}

func (wr WaitlistRoutes) Recall(w http.ResponseWriter, r *http.Request) {
	signup, err := wr.service.Recall(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		wr.respondServiceError(w, r, err)
		return
	}

	payload := models.NewEntryPayload(signup, wr.publicURL)
	wr.setProgress(r, &payload)
	respondJSON(w, http.StatusOK, payload)
}

func (wr WaitlistRoutes) Stats(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	if wr.statsCache != nil {
		cached, err := wr.statsCache.Get(r.Context())
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read stats from cache")
		}
		if cached != nil {
			respondJSON(w, http.StatusOK, models.NewStatsPayload(*cached))
			return
		}
	}

	stats, err := wr.service.Stats(r.Context())
	if err != nil {
		wr.respondServiceError(w, r, err)
		return
	}

	if wr.statsCache != nil {
		if err := wr.statsCache.Set(r.Context(), stats); err != nil {
			logger.Warn().Err(err).Msg("failed to cache stats")
		}
	}

	respondJSON(w, http.StatusOK, models.NewStatsPayload(stats))
}

// setProgress is best effort; the entry is still served without it.
func (wr WaitlistRoutes) setProgress(r *http.Request, payload *models.EntryPayload) {
	total, err := wr.service.TotalSignups(r.Context())
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to count signups for progress")
		return
	}
	payload.SetProgress(total)
}

func (wr WaitlistRoutes) invalidateStats(r *http.Request) {
	if wr.statsCache == nil {
		return
	}
	if err := wr.statsCache.Invalidate(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to invalidate stats cache")
	}
}

func (wr WaitlistRoutes) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, waitlist.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, models.ErrCodeInvalidEmail, "Please enter a valid email address")
	case errors.Is(err, waitlist.ErrNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "This email is not on the waitlist")
	case errors.Is(err, waitlist.ErrStoreUnavailable), errors.Is(err, waitlist.ErrReferralCodeExhausted):
		hlog.FromRequest(r).Error().Err(err).Msg("waitlist store unavailable")
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStoreUnavailable, "The waitlist is temporarily unavailable, please try again")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("waitlist request failed")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Something went wrong")
	}
}
