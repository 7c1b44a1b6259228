package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chartdesk/internal/domain"
	"chartdesk/internal/importer"
)

// 32 MiB in-memory cap for multipart uploads; larger files spill to disk.
const maxUploadMemory = 32 << 20

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, importer.ListSources())
}

func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	meta, err := s.datasets.CreateFromUpload(r.Context(), currentUser(r), header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleImportDataset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string                `json:"name"`
		SourceType string                `json:"sourceType"`
		Config     importer.SourceConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.Name == "" || body.SourceType == "" {
		writeError(w, http.StatusBadRequest, "name and sourceType are required")
		return
	}

	meta, err := s.datasets.CreateFromSource(r.Context(), currentUser(r), body.Name, body.SourceType, body.Config)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	metas, err := s.datasets.List(currentUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if metas == nil {
		metas = []domain.DatasetMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	meta, err := s.datasets.Get(currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleRenameDataset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.datasets.Rename(currentUser(r), mux.Vars(r)["id"], body.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.datasets.Delete(currentUser(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePreviewDataset(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	preview, err := s.datasets.Preview(currentUser(r), mux.Vars(r)["id"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
