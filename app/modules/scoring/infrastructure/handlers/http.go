package scoringhandlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/httpserver"
	"github.com/Black-And-White-Club/advent-board/app/observability"
	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ScoringHandlers serves leaderboards over HTTP.
type ScoringHandlers struct {
	service scoringservice.Service
	logger  *slog.Logger
}

// NewScoringHandlers creates a new ScoringHandlers.
func NewScoringHandlers(service scoringservice.Service, logger *slog.Logger) *ScoringHandlers {
	return &ScoringHandlers{service: service, logger: logger}
}

// Mount registers the routes on r.
func (h *ScoringHandlers) Mount(r chi.Router) {
	r.Route("/api/years/{year}", func(r chi.Router) {
		r.Get("/days/{day}/leaderboard", h.HandleDayLeaderboard)
		r.Get("/leaderboard", h.HandleYearLeaderboard)
		r.Get("/leaderboard.png", h.HandleYearChart)
		r.Get("/leaderboard.xlsx", h.HandleExport)
		r.Get("/standings", h.HandleSnapshot)
		r.Get("/users/{userID}", h.HandleUserYearDetail)
	})
}

// EntryView is the JSON shape of a day leaderboard row.
type EntryView struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Image      *string   `json:"image,omitempty"`
	Day        int       `json:"day"`
	Star       int       `json:"star"`
	InitTime   time.Time `json:"init_time"`
	StopTime   time.Time `json:"stop_time"`
	DurationMS int64     `json:"duration_ms"`
	Rank       *int      `json:"rank,omitempty"`
	Medal      string    `json:"medal,omitempty"`
}

// StandingView is the JSON shape of a year leaderboard row.
type StandingView struct {
	Position   int       `json:"position"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Image      *string   `json:"image,omitempty"`
	Score      int       `json:"score"`
	Stars      int       `json:"stars"`
	Golds      int       `json:"golds"`
	Silvers    int       `json:"silvers"`
	Bronzes    int       `json:"bronzes"`
	ComputedAt time.Time `json:"computed_at"`
}

// UserDetailView is the JSON shape of a user's year.
type UserDetailView struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Image  *string         `json:"image,omitempty"`
	Timers []UserTimerView `json:"timers"`
}

// UserTimerView is one completed star in UserDetailView.
type UserTimerView struct {
	Day        int       `json:"day"`
	Star       int       `json:"star"`
	InitTime   time.Time `json:"init_time"`
	StopTime   time.Time `json:"stop_time"`
	DurationMS int64     `json:"duration_ms"`
}

func toEntryView(e scoringservice.DayEntry) EntryView {
	v := EntryView{
		UserID:     e.UserID,
		Name:       e.Name,
		Image:      e.Image,
		Day:        e.Day,
		Star:       e.Star,
		InitTime:   e.InitTime,
		StopTime:   e.StopTime,
		DurationMS: e.Duration.Milliseconds(),
		Medal:      e.Medal(),
	}
	if e.Rank >= 0 {
		rank := e.Rank + 1
		v.Rank = &rank
	}
	return v
}

func toStandingViews(standings []scoringservice.Standing) []StandingView {
	views := make([]StandingView, len(standings))
	for i, s := range standings {
		views[i] = StandingView{
			Position:   s.Position,
			UserID:     s.UserID,
			Name:       s.Name,
			Image:      s.Image,
			Score:      s.Score,
			Stars:      s.Stars,
			Golds:      s.Golds,
			Silvers:    s.Silvers,
			Bronzes:    s.Bronzes,
			ComputedAt: s.ComputedAt,
		}
	}
	return views
}

// HandleDayLeaderboard lists one day, ranked when ?star= is given.
func (h *ScoringHandlers) HandleDayLeaderboard(w http.ResponseWriter, r *http.Request) {
	year, okY := httpserver.IntParam(r, "year")
	day, okD := httpserver.IntParam(r, "day")
	if !okY || !okD {
		httpserver.WriteError(w, http.StatusBadRequest, "year and day must be integers")
		return
	}

	var star *int
	if raw := r.URL.Query().Get("star"); raw != "" {
		s, err := strconv.Atoi(raw)
		if err != nil {
			httpserver.WriteError(w, http.StatusBadRequest, "star must be an integer")
			return
		}
		star = &s
	}

	entries, err := h.service.DayLeaderboard(r.Context(), year, day, star)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = toEntryView(e)
	}
	httpserver.WriteJSON(w, http.StatusOK, views)
}

// HandleYearLeaderboard returns the live year standings.
func (h *ScoringHandlers) HandleYearLeaderboard(w http.ResponseWriter, r *http.Request) {
	year, ok := httpserver.IntParam(r, "year")
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	standings, err := h.service.YearLeaderboard(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, toStandingViews(standings))
}

// HandleSnapshot returns the last persisted standings.
func (h *ScoringHandlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	year, ok := httpserver.IntParam(r, "year")
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	standings, err := h.service.GetSnapshot(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, toStandingViews(standings))
}

// HandleUserYearDetail returns a user's completed stars for the year.
func (h *ScoringHandlers) HandleUserYearDetail(w http.ResponseWriter, r *http.Request) {
	year, ok := httpserver.IntParam(r, "year")
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	detail, err := h.service.UserYearDetail(r.Context(), chi.URLParam(r, "userID"), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	view := UserDetailView{
		UserID: detail.UserID,
		Name:   detail.Name,
		Image:  detail.Image,
		Timers: make([]UserTimerView, 0, len(detail.Timers)),
	}
	for i := range detail.Timers {
		t := &detail.Timers[i]
		d, ok := t.Duration()
		if !ok {
			continue
		}
		view.Timers = append(view.Timers, UserTimerView{
			Day:        t.Day,
			Star:       t.Star,
			InitTime:   t.InitTime,
			StopTime:   *t.StopTime,
			DurationMS: d.Milliseconds(),
		})
	}
	httpserver.WriteJSON(w, http.StatusOK, view)
}

// HandleYearChart renders the standings as PNG.
func (h *ScoringHandlers) HandleYearChart(w http.ResponseWriter, r *http.Request) {
	h.writeBinary(w, r, "image/png", "", func(buf *bytes.Buffer, year int) error {
		return h.service.YearChart(r.Context(), year, buf)
	})
}

// HandleExport downloads the standings workbook.
func (h *ScoringHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	h.writeBinary(w, r, xlsxContentType, "leaderboard-%d.xlsx", func(buf *bytes.Buffer, year int) error {
		return h.service.ExportYear(r.Context(), year, buf)
	})
}

// writeBinary buffers the artifact so a failure can still produce a JSON error.
func (h *ScoringHandlers) writeBinary(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(*bytes.Buffer, int) error) {
	year, ok := httpserver.IntParam(r, "year")
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year must be an integer")
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, year); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="`+filename+`"`, year))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, timerdomain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, scoringservice.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *ScoringHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Scoring request failed", observability.RequestIDAttr(r.Context()), observability.ErrorAttr(err))
		msg = http.StatusText(status)
	}
	httpserver.WriteError(w, status, msg)
}
