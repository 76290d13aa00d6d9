package timerhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/httpserver"
	"github.com/Black-And-White-Club/advent-board/app/observability"
	timerservice "github.com/Black-And-White-Club/advent-board/app/modules/timer/application"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/go-chi/chi/v5"
)

// TimerHandlers serves the timer lifecycle over HTTP.
// Both start and stop times come from clock; clients never supply them.
type TimerHandlers struct {
	service timerservice.Service
	clock   timerservice.Clock
	logger  *slog.Logger
}

// NewTimerHandlers creates a new TimerHandlers.
func NewTimerHandlers(service timerservice.Service, clock timerservice.Clock, logger *slog.Logger) *TimerHandlers {
	if clock == nil {
		clock = timerservice.RealClock{}
	}
	return &TimerHandlers{
		service: service,
		clock:   clock,
		logger:  logger,
	}
}

// Mount registers the routes on r.
func (h *TimerHandlers) Mount(r chi.Router) {
	r.Route("/api/users/{userID}/timers/{year}/{day}", func(r chi.Router) {
		r.Get("/", h.HandleListForUserDay)
		r.Post("/{star}/start", h.HandleStart)
		r.Post("/{star}/complete", h.HandleComplete)
	})
}

// TimerView is the JSON shape of a timer.
type TimerView struct {
	UserID     string     `json:"user_id"`
	Year       int        `json:"year"`
	Day        int        `json:"day"`
	Star       int        `json:"star"`
	State      string     `json:"state"`
	InitTime   time.Time  `json:"init_time"`
	StopTime   *time.Time `json:"stop_time,omitempty"`
	DurationMS *int64     `json:"duration_ms,omitempty"`
}

func toView(t *timerdomain.Timer) TimerView {
	v := TimerView{
		UserID:   t.UserID,
		Year:     t.Year,
		Day:      t.Day,
		Star:     t.Star,
		State:    t.State().String(),
		InitTime: t.InitTime,
		StopTime: t.StopTime,
	}
	if d, ok := t.Duration(); ok {
		ms := d.Milliseconds()
		v.DurationMS = &ms
	}
	return v
}

// HandleListForUserDay returns the user's timers for one day.
func (h *TimerHandlers) HandleListForUserDay(w http.ResponseWriter, r *http.Request) {
	year, okY := httpserver.IntParam(r, "year")
	day, okD := httpserver.IntParam(r, "day")
	if !okY || !okD {
		httpserver.WriteError(w, http.StatusBadRequest, "year and day must be integers")
		return
	}

	timers, err := h.service.ListForUserDay(r.Context(), chi.URLParam(r, "userID"), year, day)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	views := make([]TimerView, len(timers))
	for i := range timers {
		views[i] = toView(&timers[i])
	}
	httpserver.WriteJSON(w, http.StatusOK, views)
}

// HandleStart starts a timer at the current time.
func (h *TimerHandlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(r)
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year, day and star must be integers")
		return
	}

	t, err := h.service.StartTimer(r.Context(), key, h.clock.Now())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, toView(t))
}

// HandleComplete stops a timer at the current time. Any request body is
// ignored; backdated completions are an operator action (cmd/admin).
func (h *TimerHandlers) HandleComplete(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(r)
	if !ok {
		httpserver.WriteError(w, http.StatusBadRequest, "year, day and star must be integers")
		return
	}

	t, err := h.service.CompleteTimer(r.Context(), key, h.clock.Now())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, toView(t))
}

func keyFromRequest(r *http.Request) (timerdomain.Key, bool) {
	year, okY := httpserver.IntParam(r, "year")
	day, okD := httpserver.IntParam(r, "day")
	star, okS := httpserver.IntParam(r, "star")
	return timerdomain.Key{
		UserID: chi.URLParam(r, "userID"),
		Year:   year,
		Day:    day,
		Star:   star,
	}, okY && okD && okS
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, timerdomain.ErrInvalidArgument),
		errors.Is(err, timerservice.ErrInvalidStopTime):
		return http.StatusBadRequest
	case errors.Is(err, timerservice.ErrUserNotFound),
		errors.Is(err, timerservice.ErrTimerNotFound):
		return http.StatusNotFound
	case errors.Is(err, timerservice.ErrStarLocked),
		errors.Is(err, timerservice.ErrTimerAlreadyCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *TimerHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Timer request failed", observability.RequestIDAttr(r.Context()), observability.ErrorAttr(err))
		msg = http.StatusText(status)
	}
	httpserver.WriteError(w, status, msg)
}
