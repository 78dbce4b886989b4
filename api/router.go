package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/logger"
	"github.com/kilianp07/gridstatus/core/store"
	"github.com/kilianp07/gridstatus/internal/eventbus"
)

// DefaultMaxLimit caps the number of observations a query may return.
const DefaultMaxLimit = 10000

// Deps are the collaborators of the API. Bus may be nil, in which case the
// stream endpoint is not mounted.
type Deps struct {
	Store  store.Store
	ISOs   []iso.ISO
	Bus    *eventbus.TypedBus[events.FetchEvent]
	Logger logger.Logger
	// Token enables bearer authentication of /api routes when set.
	Token    string
	MaxLimit int
	// Metrics mounts the Prometheus handler at /metrics.
	Metrics bool
}

type server struct {
	deps     Deps
	validate *validator.Validate
	log      logger.Logger
}

// NewRouter returns the HTTP handler of the API.
func NewRouter(d Deps) http.Handler {
	if d.MaxLimit <= 0 {
		d.MaxLimit = DefaultMaxLimit
	}
	s := &server{deps: d, validate: newValidator(), log: d.Logger}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(d.Token))
		r.Get("/isos", s.listISOs)
		r.Get("/observations", s.queryObservations)
		r.Get("/latest/{iso}/{dataset}", s.latest)
		if d.Bus != nil {
			r.Get("/stream", s.stream)
		}
	})
	return r
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bearerAuth rejects requests without "Bearer <token>" when token is set.
// Websocket clients may pass the token as the access_token query parameter.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				auth := r.Header.Get("Authorization")
				if auth != "Bearer "+token && r.URL.Query().Get("access_token") != token {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type isoInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Timezone string   `json:"timezone"`
	Markets  []string `json:"markets"`
}

func (s *server) listISOs(w http.ResponseWriter, _ *http.Request) {
	out := make([]isoInfo, 0, len(s.deps.ISOs))
	for _, i := range s.deps.ISOs {
		info := isoInfo{ID: i.ID(), Name: i.Name(), Timezone: i.Location().String(), Markets: []string{}}
		for _, m := range i.Markets() {
			info.Markets = append(info.Markets, m.String())
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
