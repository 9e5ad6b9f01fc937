package http

import (
	"net/http"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/errutil"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/safe"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

// uploadDocument accepts a multipart upload and starts ingestion in the background
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(usecase.ErrValidation, "invalid multipart form", goerr.V("cause", err.Error())))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logging.From(ctx).Warn("failed to remove multipart temp files", "error", err)
			}
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(usecase.ErrValidation, "no file uploaded"))
		return
	}
	defer safe.Close(ctx, file)

	job, err := s.uc.Ingestion.Upload(ctx, usecase.UploadInput{
		CallerID: callerFrom(ctx),
		AgentID:  model.AgentID(r.FormValue("agentId")),
		Title:    r.FormValue("title"),
		FileName: header.Filename,
		Body:     file,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, map[string]any{
		"jobId":    job.ID.String(),
		"status":   job.Status.String(),
		"progress": job.Progress,
	})
}

func (s *Server) documentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := s.uc.Ingestion.Status(ctx, chi.URLParam(r, "id"))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	status := http.StatusOK
	if view.Status == types.JobStatusNotFound {
		status = http.StatusNotFound
	}
	writeJSON(ctx, w, status, toJobStatusResponse(view))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := s.uc.Document.List(ctx, callerFrom(ctx), model.AgentID(chi.URLParam(r, "agentID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, toDocumentResponse(d))
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"documents": resp})
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.Document.Delete(ctx, callerFrom(ctx), model.DocumentID(chi.URLParam(r, "documentID"))); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
