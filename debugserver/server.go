// Package debugserver exposes debugtrace and compiler warnings over HTTP:
// GET /probes/{id} returns the latest ValueSummary for a probe,
// GET /warnings returns the compiled program's warning list (spec.md §4.10's
// "the debug UI reads them by id" read contract).
package debugserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/debugtrace"
)

// Server serves the debug read contract over HTTP.
type Server struct {
	router  *mux.Router
	trace   *debugtrace.Controller
	program func() *compiler.CompiledProgram
}

// NewServer builds a Server. program is a getter rather than a fixed value
// so a hot-swapped CompiledProgram (spec.md §4.13) is always reflected
// without restarting the server.
func NewServer(trace *debugtrace.Controller, program func() *compiler.CompiledProgram) *Server {
	s := &Server{trace: trace, program: program, router: mux.NewRouter()}
	s.router.HandleFunc("/probes/{id}", s.handleProbe).Methods(http.MethodGet)
	s.router.HandleFunc("/warnings", s.handleWarnings).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the debug read contract on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, ok := s.trace.Latest(id)
	if !ok {
		http.Error(w, "probe has no recorded value yet", http.StatusNotFound)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	program := s.program()
	if program == nil {
		writeJSON(w, []compiler.Warning{})
		return
	}
	writeJSON(w, program.Warnings)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
