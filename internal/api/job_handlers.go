package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chartdesk/internal/domain"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DatasetID string `json:"datasetId"`
		Schedule  string `json:"schedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.DatasetID == "" || body.Schedule == "" {
		writeError(w, http.StatusBadRequest, "datasetId and schedule are required")
		return
	}

	job, err := s.refresh.CreateJob(currentUser(r), body.DatasetID, body.Schedule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.refresh.RestartScheduler()
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.refresh.ListJobs(currentUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.RefreshJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleSetJobEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := s.refresh.SetEnabled(currentUser(r), mux.Vars(r)["id"], body.Enabled); err != nil {
		writeServiceError(w, err)
		return
	}
	s.refresh.RestartScheduler()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.refresh.DeleteJob(currentUser(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	s.refresh.RestartScheduler()
	writeJSON(w, http.StatusNoContent, nil)
}
