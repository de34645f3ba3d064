package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"daycard/internal/card"
	"daycard/internal/config"
	appLog "daycard/internal/log"
	"daycard/internal/model"
	"daycard/internal/schedule"
	"daycard/internal/source"
)

const dayCacheTTL = 30 * time.Second

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))

// Server serves the schedule card and its JSON API.
type Server struct {
	cfg *config.Config
	src source.Source
	loc *time.Location
	mux *http.ServeMux

	// now is read once per request.
	now func() time.Time

	// Per-day cache of source results; the layout itself is recomputed on
	// every request.
	dayMu    sync.RWMutex
	dayCache map[string]dayEntry
}

type dayEntry struct {
	events    []model.CalendarEvent
	updatedAt time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs a new Server reading events from src.
func NewServer(cfg *config.Config, src source.Source, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		src:      src,
		loc:      ResolveLocation(cfg.Timezone),
		mux:      http.NewServeMux(),
		now:      time.Now,
		dayCache: make(map[string]dayEntry),
	}
	for _, o := range opts {
		o(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Invalidate drops all cached source results.
func (s *Server) Invalidate() {
	s.dayMu.Lock()
	s.dayCache = make(map[string]dayEntry)
	s.dayMu.Unlock()
	appLog.Debug("day cache invalidated")
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="daycard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/schedule", s.handleSchedule)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// handlePreview serves the last captured PNG.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Capture.Output)
}

// defaultState is the card state before query parameters are applied.
func (s *Server) defaultState(now time.Time) card.State {
	return card.NewState(now, card.ParseView(s.cfg.View.DefaultView), s.cfg.View.Use24Hour)
}

func (s *Server) buildOptions() card.Options {
	return CardOptions(s.cfg)
}

// CardOptions maps the layout and view sections of cfg to card options.
func CardOptions(cfg *config.Config) card.Options {
	policy, _ := schedule.ParsePolicy(cfg.Layout.OverlapPolicy)
	return card.Options{
		Layout: schedule.Options{
			HourHeight: cfg.Layout.HourHeight,
			Policy:     policy,
			Step:       cfg.Layout.OverlapStep,
		},
		ShowAllDay: cfg.View.ShowAllDay,
	}
}

// buildCard loads the day's events and builds the view model for r.
func (s *Server) buildCard(r *http.Request) (card.Card, error) {
	now := s.now().In(s.loc)
	st := card.StateFromQuery(r.URL.Query(), s.defaultState(now))

	events, err := s.dayEvents(r.Context(), st.Date)
	if err != nil {
		return card.Card{}, err
	}

	c := card.Build(events, st, now, s.buildOptions())
	appLog.Debug("card built",
		"date", st.Date.Format(card.DateLayout),
		"view", string(st.View),
		"timed", len(c.Timed),
		"all_day", len(c.Layout.AllDay),
		"dropped", c.Layout.Dropped,
	)
	return c, nil
}

func (s *Server) dayEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error) {
	key := day.Format(card.DateLayout)
	cacheNow := s.now()

	s.dayMu.RLock()
	entry, ok := s.dayCache[key]
	s.dayMu.RUnlock()
	if ok && cacheNow.Sub(entry.updatedAt) < dayCacheTTL {
		return entry.events, nil
	}

	events, err := s.src.DayEvents(ctx, day)
	if err != nil {
		return nil, err
	}

	s.dayMu.Lock()
	s.dayCache[key] = dayEntry{events: events, updatedAt: s.now()}
	s.dayMu.Unlock()
	return events, nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	c, err := s.buildCard(r)
	if err != nil {
		appLog.Error("calendar: load events failed", err)
		http.Error(w, "failed to load events", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderHTML(w, c); err != nil {
		appLog.Error("calendar: template failed", err)
	}
}

// RenderHTML writes the card page for c.
func RenderHTML(w io.Writer, c card.Card) error {
	return pageTemplates.ExecuteTemplate(w, "calendar.html", c)
}

// ScheduleResponse is the JSON response shape for /api/schedule.
type ScheduleResponse struct {
	Date      string                 `json:"date"`
	Title     string                 `json:"title"`
	IsToday   bool                   `json:"is_today"`
	View      string                 `json:"view"`
	Use24Hour bool                   `json:"use_24_hour"`
	Policy    schedule.Policy        `json:"policy"`
	Height    float64                `json:"height"`
	Timed     []TimedEvent           `json:"timed"`
	AllDay    []model.CalendarEvent  `json:"all_day"`
	Dropped   int                    `json:"dropped"`
	Scroll    *schedule.ScrollTarget `json:"scroll,omitempty"`
	Events    []model.CalendarEvent  `json:"events"`
}

// TimedEvent is a positioned event with its display time range.
type TimedEvent struct {
	model.PositionedEvent
	TimeRange string `json:"time_range"`
}

// handleSchedule returns the layout for one day.
//
// GET /api/schedule?date=2026-10-17&fmt=24&view=timeline
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	c, err := s.buildCard(r)
	if err != nil {
		appLog.Error("api schedule: load events failed", err)
		writeError(w, http.StatusBadGateway, "failed to load events")
		return
	}
	writeJSON(w, http.StatusOK, ScheduleJSON(c, s.buildOptions().Layout.Policy))
}

// ScheduleJSON converts a built card into the /api/schedule payload.
func ScheduleJSON(c card.Card, policy schedule.Policy) ScheduleResponse {
	resp := ScheduleResponse{
		Date:      c.State.Date.Format(card.DateLayout),
		Title:     c.Title,
		IsToday:   c.IsToday,
		View:      string(c.State.View),
		Use24Hour: c.State.Use24Hour,
		Height:    c.TimelineHeight,
		Timed:     make([]TimedEvent, 0, len(c.Timed)),
		AllDay:    c.Layout.AllDay,
		Dropped:   c.Layout.Dropped,
		Scroll:    c.Scroll,
		Events:    make([]model.CalendarEvent, 0, len(c.List)),
		Policy:    policy,
	}
	if resp.Policy == "" {
		resp.Policy = schedule.PolicyCascade
	}
	for _, b := range c.Timed {
		resp.Timed = append(resp.Timed, TimedEvent{PositionedEvent: b.PositionedEvent, TimeRange: b.TimeRange})
	}
	for _, row := range c.List {
		resp.Events = append(resp.Events, row.CalendarEvent)
	}
	return resp
}

// ResolveLocation loads an IANA zone, falling back to time.Local.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

var templateFuncs = template.FuncMap{
	"href": func(st card.State) string {
		return "/calendar?" + st.Query().Encode()
	},
	"px": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64) + "px"
	},
	"offset": func(v float64, unit model.LeftUnit) string {
		return strconv.FormatFloat(v, 'f', -1, 64) + string(unit)
	},
	// css passes recognised colors through; anything else is left to the
	// escaper's CSS filter.
	"css": func(s string) any {
		if model.IsCSSColor(s) {
			return template.CSS(s)
		}
		return s
	},
}
