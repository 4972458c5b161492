package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trackd/internal/track"
	"trackd/pkg/types"
)

// Service defines the broker operations required by the HTTP API layer.
// *track.Mediator satisfies it.
type Service interface {
	SnapshotAttributes() map[string]map[string]any
	SnapshotMethods() map[string]map[string]int
	Snapshot(name string) (types.Snapshot, error)
	GetAttribute(name, key string) (any, error)
	SetAttribute(name, key string, value any) error
	SetAttributeSilent(name, key string, value any) error
	InvokeMethod(name, method string, args ...any) (any, error)
}

// zlog is an optional structured logger. If unset, the HTTP layer logs nothing.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// maxBodyBytes bounds write/invoke request bodies.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// NewMux builds the inspection router: pull snapshots, single-attribute reads,
// attribute writes, and method invocations. Event push stays in-process; the
// surface is deliberately poll-only.
//
// @title        trackd API
// @version      1.0
// @description  HTTP surface for inspecting and editing tracked state.
// @BasePath     /
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// GetTrackables godoc
	// @Summary  All attribute snapshots
	// @Produce  json
	// @Success  200 {object} types.TrackablesResponse
	// @Router   /trackables [get]
	r.Get("/trackables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.TrackablesResponse{Trackables: svc.SnapshotAttributes()})
	})

	// GetMethods godoc
	// @Summary  All method invocation counts
	// @Produce  json
	// @Success  200 {object} types.MethodsResponse
	// @Router   /methods [get]
	r.Get("/methods", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.MethodsResponse{Methods: svc.SnapshotMethods()})
	})

	r.Route("/trackables/{name}", func(r chi.Router) {
		// GetTrackable godoc
		// @Summary  One trackable's full state
		// @Produce  json
		// @Success  200 {object} types.TrackableState
		// @Failure  404 {object} types.ErrorResponse
		// @Router   /trackables/{name} [get]
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			snap, err := svc.Snapshot(name)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, types.TrackableState{Name: name, Attributes: snap.Attributes, Methods: snap.Methods})
		})

		r.Get("/attrs/{key}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			key := chi.URLParam(r, "key")
			v, err := svc.GetAttribute(name, key)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, types.AttributeResponse{Key: key, Value: v})
		})

		// PutAttribute godoc
		// @Summary  Write one attribute
		// @Accept   json
		// @Produce  json
		// @Param    body body types.WriteRequest true "new value"
		// @Success  200 {object} types.AttributeResponse
		// @Failure  400 {object} types.ErrorResponse
		// @Failure  404 {object} types.ErrorResponse
		// @Router   /trackables/{name}/attrs/{key} [put]
		r.Put("/attrs/{key}", func(w http.ResponseWriter, r *http.Request) {
			var req types.WriteRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			name := chi.URLParam(r, "name")
			key := chi.URLParam(r, "key")
			var err error
			if req.Silent {
				err = svc.SetAttributeSilent(name, key, req.Value)
			} else {
				err = svc.SetAttribute(name, key, req.Value)
			}
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			v, err := svc.GetAttribute(name, key)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, types.AttributeResponse{Key: key, Value: v})
		})

		// InvokeMethod godoc
		// @Summary  Invoke a tracked method
		// @Accept   json
		// @Produce  json
		// @Param    body body types.InvokeRequest true "arguments"
		// @Success  200 {object} types.InvokeResponse
		// @Failure  404 {object} types.ErrorResponse
		// @Router   /trackables/{name}/methods/{method} [post]
		r.Post("/methods/{method}", func(w http.ResponseWriter, r *http.Request) {
			var req types.InvokeRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			name := chi.URLParam(r, "name")
			method := chi.URLParam(r, "method")
			res, err := svc.InvokeMethod(name, method, req.Args...)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			calls := svc.SnapshotMethods()[name][method]
			writeJSON(w, types.InvokeResponse{Result: res, Calls: calls})
		})
	})

	MountSwagger(r)
	return r
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// writeServiceError maps broker errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case track.IsUnknownTrackable(err), track.IsNoSuchMethod(err), track.IsUnknownAttribute(err):
		status = http.StatusNotFound
	case track.IsUnsupportedValue(err):
		status = http.StatusBadRequest
	}
	if zlog != nil && status == http.StatusInternalServerError {
		z := zlog.Error().Str("path", r.URL.Path)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Err(err).Msg("request failed")
	}
	writeJSONError(w, status, err.Error())
}
