// Package fakeapi is an in-memory stand-in for the freezer inventory API,
// used by tests across the module.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/idilsaglam/freezers/internal/model"
)

const sessionCookie = "session"

// Server serves the freezer REST surface from memory.
type Server struct {
	mu       sync.RWMutex
	freezers map[string]model.Freezer
	images   map[string][]byte
	products map[string]model.Product
	admins   map[string]bool
	sessions map[string]string

	// Requests counts handled requests by "METHOD path".
	Requests map[string]int
}

// New returns an empty server.
func New() *Server {
	return &Server{
		freezers: make(map[string]model.Freezer),
		images:   make(map[string][]byte),
		products: make(map[string]model.Product),
		admins:   make(map[string]bool),
		sessions: make(map[string]string),
		Requests: make(map[string]int),
	}
}

// Start runs s on an httptest server; callers Close it.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

// AddFreezer stores f with an optional image.
func (s *Server) AddFreezer(f model.Freezer, image []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freezers[f.Name] = f
	if image != nil {
		s.images[f.Name] = image
	}
}

// AddProduct stores p.
func (s *Server) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Name] = p
}

// Admin grants login the right to update and delete.
func (s *Server) Admin(login string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[login] = true
}

// Freezer returns the stored freezer.
func (s *Server) Freezer(id string) (model.Freezer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.freezers[id]
	return f, ok
}

// Hits returns how many times "METHOD path" was served.
func (s *Server) Hits(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Requests[key]
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.Requests[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case r.Method == http.MethodPost && path == "/auth":
		s.auth(w, r)
	case r.Method == http.MethodGet && path == "/freezers":
		s.list(w, r)
	case r.Method == http.MethodPost && path == "/freezers/update":
		s.update(w, r)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "freezers" && parts[2] == "image":
		s.image(w, parts[1])
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "freezers":
		s.freezer(w, parts[1])
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "freezers":
		s.delete(w, r, parts[1])
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "products":
		s.product(w, parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) auth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Login == "" {
		http.Error(w, "bad login", http.StatusBadRequest)
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = body.Login
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) isAdmin(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins[s.sessions[c.Value]]
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.freezers))
	for id := range s.freezers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = len(ids)
	}
	if offset > len(ids) {
		offset = len(ids)
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	writeJSON(w, http.StatusOK, ids[offset:end])
}

func (s *Server) freezer(w http.ResponseWriter, id string) {
	f, ok := s.Freezer(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) image(w http.ResponseWriter, id string) {
	s.mu.RLock()
	b, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(b)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var f model.Freezer
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.freezers[f.Name] = f
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request, id string) {
	if !s.isAdmin(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.freezers[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(s.freezers, id)
	delete(s.images, id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) product(w http.ResponseWriter, id string) {
	s.mu.RLock()
	p, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
