package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"chartdesk/internal/service"
)

// Server is the HTTP surface over the service layer.
type Server struct {
	auth     *service.AuthService
	datasets *service.DatasetService
	charts   *service.ChartService
	refresh  *service.RefreshService
}

func NewServer(auth *service.AuthService, datasets *service.DatasetService, charts *service.ChartService, refresh *service.RefreshService) *Server {
	return &Server{auth: auth, datasets: datasets, charts: charts, refresh: refresh}
}

// Router builds the route table. Everything under the authed subrouter
// requires a bearer token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireAuth)

	authed.HandleFunc("/sources", s.handleListSources).Methods("GET")

	authed.HandleFunc("/datasets", s.handleUploadDataset).Methods("POST")
	authed.HandleFunc("/datasets/import", s.handleImportDataset).Methods("POST")
	authed.HandleFunc("/datasets", s.handleListDatasets).Methods("GET")
	authed.HandleFunc("/datasets/{id}", s.handleGetDataset).Methods("GET")
	authed.HandleFunc("/datasets/{id}", s.handleRenameDataset).Methods("PATCH")
	authed.HandleFunc("/datasets/{id}", s.handleDeleteDataset).Methods("DELETE")
	authed.HandleFunc("/datasets/{id}/preview", s.handlePreviewDataset).Methods("GET")
	authed.HandleFunc("/datasets/{id}/aggregate", s.handleAggregate).Methods("POST")

	authed.HandleFunc("/charts", s.handleSaveChart).Methods("POST")
	authed.HandleFunc("/charts", s.handleListCharts).Methods("GET")
	authed.HandleFunc("/charts/{id}", s.handleGetChart).Methods("GET")
	authed.HandleFunc("/charts/{id}", s.handleDeleteChart).Methods("DELETE")

	authed.HandleFunc("/jobs", s.handleCreateJob).Methods("POST")
	authed.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	authed.HandleFunc("/jobs/{id}", s.handleSetJobEnabled).Methods("PATCH")
	authed.HandleFunc("/jobs/{id}", s.handleDeleteJob).Methods("DELETE")

	return r
}

// Handler wraps the router for http.Server.
func (s *Server) Handler() http.Handler {
	return s.Router()
}
