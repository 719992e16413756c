// Package web serves the memory log over HTTP: an HTML form to add entries,
// the reverse-chronological list, substring search and a JSON endpoint.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/felixgeelhaar/memlog/internal/events"
	"github.com/felixgeelhaar/memlog/internal/observe"
	"github.com/felixgeelhaar/memlog/internal/store"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"joinTags": func(tags []string) string { return strings.Join(tags, ", ") },
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	},
}

// Server owns the request handlers. The store is shared by all requests and
// is not closed by the server.
type Server struct {
	store  store.Storage
	obs    *observe.Observer
	bus    *events.Bus
	tmpl   *template.Template
	router *mux.Router
}

type pageData struct {
	Query   string
	Entries []store.Entry
}

func NewServer(s store.Storage, obs *observe.Observer, bus *events.Bus) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	srv := &Server{
		store:  s,
		obs:    obs,
		bus:    bus,
		tmpl:   tmpl,
		router: mux.NewRouter(),
	}
	srv.routes()
	return srv, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/add_memory", s.handleAdd).Methods(http.MethodPost)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/memories", s.handleAPI).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
}

// Handler returns the routed, logged and traced handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.logRequests(s.router), "memlog")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.obs.Log().Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", m.Code).
			Str("duration", m.Duration.String()).
			Msg("request")
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.bus.Emit(events.EntriesListed, "web", map[string]any{"results": len(entries)})
	s.render(w, r, "index.html", pageData{Entries: entries})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	topic := r.PostFormValue("topic")
	tags := ParseTags(r.PostFormValue("tags"))

	id, err := s.store.Store(r.Context(), topic, r.PostFormValue("content"), tags)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.bus.Emit(events.EntryStored, "web", map[string]any{"id": id, "topic": topic, "tags": len(tags)})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSearch shows nothing for an empty query; the store itself would
// match every row.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	entries := []store.Entry{}
	if query != "" {
		var err error
		entries, err = s.store.Search(r.Context(), query)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.bus.Emit(events.SearchPerformed, "web", map[string]any{"query": query, "results": len(entries)})
	}

	s.render(w, r, "search.html", pageData{Query: query, Entries: entries})
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var (
		entries []store.Entry
		err     error
	)

	if query, ok := r.URL.Query()["q"]; ok {
		entries, err = s.store.Search(r.Context(), query[0])
	} else {
		entries, err = s.store.ListAll(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.obs.Log().Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.obs.Log().Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.bus.Emit(events.RequestFailed, "web", map[string]any{"path": r.URL.Path, "error": err.Error()})
	http.Error(w, "internal error", http.StatusInternalServerError)
}
