package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chartdesk/internal/chart"
	"chartdesk/internal/domain"
)

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req chart.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := s.charts.Aggregate(currentUser(r), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DatasetID string `json:"datasetId"`
		chart.Request
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.DatasetID == "" {
		writeError(w, http.StatusBadRequest, "datasetId is required")
		return
	}

	saved, err := s.charts.Save(currentUser(r), body.DatasetID, body.Request)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := s.charts.List(currentUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list charts")
		return
	}
	if charts == nil {
		charts = []domain.Chart{}
	}
	writeJSON(w, http.StatusOK, charts)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	saved, err := s.charts.Get(currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.charts.Delete(currentUser(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
