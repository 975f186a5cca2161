package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/rowmap/internal/core"
)

// definitionResponse is the public view of a registered query.
type definitionResponse struct {
	core.QueryInfo
	SQL     string     `json:"sql"`
	Shape   core.Shape `json:"shape"`
	GroupBy string     `json:"groupBy,omitempty"`
	Target  string     `json:"target"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"queries": core.QueryCount(),
		"limiter": s.service.LimiterStatus(),
	})
}

// handleIndex renders the list of queries by group.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, page("Queries", queryIndex(core.Groups(), s.service.ListQueriesByGroup())))
}

// handleListQueries returns all queries organized by group.
func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.ListQueriesByGroup())
}

// handleDescribeQuery returns a query's definition without running it.
func (s *Server) handleDescribeQuery(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.Describe(chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, definitionResponse{
		QueryInfo: def.Info,
		SQL:       def.SQL,
		Shape:     def.Shape,
		GroupBy:   def.GroupBy,
		Target:    def.Target.Name,
	})
}

// handleRunQuery runs a query and returns the mapped result as JSON.
// Positional arguments come from repeated ?arg= parameters.
func (s *Server) handleRunQuery(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.RunText(r.Context(), chi.URLParam(r, "key"), r.URL.Query()["arg"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleQueryPage runs a query and renders its rows as an HTML table.
func (s *Server) handleQueryPage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	args := r.URL.Query()["arg"]

	def, err := s.service.Describe(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Ask for the arguments before running
	if len(args) == 0 && len(def.Info.Params) > 0 {
		render(w, r, http.StatusOK, page(def.Info.Label, resultView(def.Info, nil, nil)))
		return
	}

	res, err := s.service.RunText(r.Context(), key, args)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, page(def.Info.Label, resultView(def.Info, args, res)))
}
