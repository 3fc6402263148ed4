package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/logging"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/aretw0/gibbs/pkg/unit"
	"github.com/go-chi/chi/v5"
)

// Server exposes a unit.Manager over HTTP.
type Server struct {
	Units   *unit.Manager
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// ModelSpec selects a thermodynamic model from the registry.
type ModelSpec struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// CreateUnitRequest is the optional body of POST /units/{id}.
type CreateUnitRequest struct {
	Model *ModelSpec `json:"model,omitempty"`
}

// SetpointsRequest is the body of PUT /units/{id}/setpoints.
// Omitted fields keep their current value.
type SetpointsRequest struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
}

// UnitStatus describes a unit.
type UnitStatus struct {
	ID          string               `json:"id"`
	Phase       domain.Phase         `json:"phase"`
	Model       string               `json:"model,omitempty"`
	Temperature float64              `json:"temperature"`
	Pressure    float64              `json:"pressure"`
	Feed        domain.MaterialState `json:"feed"`
}

// ProductResponse is the body of GET /units/{id}/product.
type ProductResponse struct {
	Product     domain.MaterialState `json:"product"`
	GibbsEnergy float64              `json:"gibbs_energy"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHandler creates the HTTP handler for the manager.
func NewHandler(units *unit.Manager, opts ...Option) http.Handler {
	s := &Server{
		Units:   units,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/models", s.ListModels)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/units", func(r chi.Router) {
		r.Get("/", s.ListUnits)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/", s.CreateUnit)
			r.Get("/", s.GetUnit)
			r.Delete("/", s.DeleteUnit)
			r.Put("/feed", s.SetFeed)
			r.Put("/setpoints", s.SetSetpoints)
			r.Put("/model", s.SetModel)
			r.Post("/initialize", s.lifecycle(func(u *gibbs.Reactor) error { return u.Initialize() }))
			r.Post("/validate", s.lifecycle(func(u *gibbs.Reactor) error { return u.Validate() }))
			r.Post("/terminate", s.lifecycle(func(u *gibbs.Reactor) error { u.Terminate(); return nil }))
			r.Post("/calculate", s.Calculate)
			r.Get("/product", s.GetProduct)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Get("/{runID}", s.GetRun)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "gibbs-http",
		"version": strings.TrimSpace(gibbs.Version),
	})
}

// ListModels handles the GET /models request.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, thermo.Names())
}

// ListUnits handles the GET /units request.
func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Units.IDs())
}

// CreateUnit handles the POST /units/{id} request.
func (s *Server) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var body CreateUnitRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &body) {
			return
		}
	}

	// Units are only registered fully configured.
	var opts []gibbs.Option
	if body.Model != nil {
		model, err := thermo.New(body.Model.Name, body.Model.Params)
		if err != nil {
			s.writeError(w, domain.Wrap(domain.KindInvalidArgument, err))
			return
		}
		opts = append(opts, gibbs.WithThermoModel(model), gibbs.WithModelName(body.Model.Name))
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Units.Create(id, opts...); err != nil {
		s.writeError(w, err)
		return
	}
	s.withUnit(w, r, http.StatusCreated, func(*gibbs.Reactor) error { return nil })
}

// GetUnit handles the GET /units/{id} request.
func (s *Server) GetUnit(w http.ResponseWriter, r *http.Request) {
	s.withUnit(w, r, http.StatusOK, func(*gibbs.Reactor) error { return nil })
}

// DeleteUnit handles the DELETE /units/{id} request.
func (s *Server) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := s.Units.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFeed handles the PUT /units/{id}/feed request.
func (s *Server) SetFeed(w http.ResponseWriter, r *http.Request) {
	var feed domain.MaterialState
	if !s.decode(w, r, &feed) {
		return
	}
	s.withUnit(w, r, http.StatusOK, func(u *gibbs.Reactor) error {
		u.SetFeed(feed)
		return nil
	})
}

// SetSetpoints handles the PUT /units/{id}/setpoints request.
func (s *Server) SetSetpoints(w http.ResponseWriter, r *http.Request) {
	var body SetpointsRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withUnit(w, r, http.StatusOK, func(u *gibbs.Reactor) error {
		if body.Temperature != nil {
			u.SetTemperature(*body.Temperature)
		}
		if body.Pressure != nil {
			u.SetPressure(*body.Pressure)
		}
		return nil
	})
}

// SetModel handles the PUT /units/{id}/model request.
func (s *Server) SetModel(w http.ResponseWriter, r *http.Request) {
	var body ModelSpec
	if !s.decode(w, r, &body) {
		return
	}
	s.withUnit(w, r, http.StatusOK, func(u *gibbs.Reactor) error {
		return useModel(u, body)
	})
}

// Calculate handles the POST /units/{id}/calculate request.
// The stored run record is returned and the feed/product diff is
// broadcast to subscribers of the unit.
func (s *Server) Calculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := s.Units.Calculate(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	diff := domain.Diff(record.Feed, record.Product)
	if !diff.IsEmpty() {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(bytes))
		}
	}

	writeJSON(w, http.StatusOK, record)
}

// GetProduct handles the GET /units/{id}/product request.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	var resp ProductResponse
	err := s.Units.Do(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, u *gibbs.Reactor) error {
		var err error
		if resp.Product, err = u.Product(); err != nil {
			return err
		}
		resp.GibbsEnergy, err = u.GibbsEnergy()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Units.Store().List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetRun handles the GET /runs/{runID} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	record, err := s.Units.Store().Load(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// SubscribeEvents handles the GET /units/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Units.Get(id); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) lifecycle(fn func(*gibbs.Reactor) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withUnit(w, r, http.StatusOK, fn)
	}
}

// withUnit runs fn under the unit lock and answers with the unit status.
func (s *Server) withUnit(w http.ResponseWriter, r *http.Request, code int, fn func(*gibbs.Reactor) error) {
	var st UnitStatus
	err := s.Units.Do(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, u *gibbs.Reactor) error {
		if err := fn(u); err != nil {
			return err
		}
		st = status(u)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, code, st)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   string(domain.KindInvalidArgument),
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	kind := string(domain.KindOf(err))
	switch {
	case kind != "":
	case code == http.StatusNotFound:
		kind = "not_found"
	default:
		kind = "internal"
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	} else {
		s.logger.Debug("Request rejected", "kind", kind, "error", err)
	}
	writeJSON(w, code, ErrorResponse{Error: kind, Message: err.Error()})
}

// StatusFor maps an error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnitNotFound), errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFailedInitialization):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrCalculationFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func useModel(u *gibbs.Reactor, spec ModelSpec) error {
	if err := u.UseModel(spec.Name, spec.Params); err != nil {
		return domain.Wrap(domain.KindInvalidArgument, err)
	}
	return nil
}

func status(u *gibbs.Reactor) UnitStatus {
	t, p := u.Setpoints()
	return UnitStatus{
		ID:          u.Name(),
		Phase:       u.Phase(),
		Model:       u.ModelName(),
		Temperature: t,
		Pressure:    p,
		Feed:        u.Feed(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
