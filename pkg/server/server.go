package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/api"
	"github.com/jfletcher/docstore/pkg/storage"
)

// Server holds references to storage, router, etc.
type Server struct {
	router   *mux.Router
	dbEngine *storage.StorageEngine
}

// NewServer creates a new instance of Server.
func NewServer(options ...storage.StorageOption) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		dbEngine: storage.NewStorageEngine(options...),
	}

	handler := api.NewHandler(s.dbEngine)
	handler.RegisterRoutes(s.router)

	// Use the logging middleware for all routes
	s.router.Use(requestLoggerMiddleware)

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("WARN: No route found for %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return s
}

// requestLoggerMiddleware logs the method, URL path, and duration for each request.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		log.Printf("INFO: Request %s %s took %s", r.Method, r.URL.Path, elapsed)
	})
}

// InitDB loads data from a file, if one exists.
func (s *Server) InitDB(filename string) {
	if err := s.dbEngine.LoadFromFile(filename); err != nil {
		log.Printf("ERROR: Could not load DB from file %s: %v", filename, err)
	} else {
		log.Printf("INFO: Loaded DB from file %s successfully", filename)
	}
}

// SaveDB saves the current database state to file
func (s *Server) SaveDB(filename string) {
	if err := s.dbEngine.SaveToFile(filename); err != nil {
		log.Printf("ERROR: Could not save DB to file %s: %v", filename, err)
	} else {
		log.Printf("INFO: Saved DB to file %s successfully", filename)
	}
}

// StartBackgroundWorkers starts the engine's periodic save worker.
func (s *Server) StartBackgroundWorkers() {
	s.dbEngine.StartBackgroundWorkers()
}

// StopBackgroundWorkers stops the engine's background workers.
func (s *Server) StopBackgroundWorkers() {
	s.dbEngine.StopBackgroundWorkers()
}

// Router exposes the internal mux.Router.
func (s *Server) Router() http.Handler {
	return s.router
}
