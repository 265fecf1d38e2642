package preview

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router serves /healthz, /metrics when configured, and the output directory.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.Dir.Output)))
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.status.health()
	code := http.StatusOK
	if !h.HasGoodBuild {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(h)
}
