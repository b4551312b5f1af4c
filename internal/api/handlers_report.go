package api

import (
	"net/http"
	"os"

	"github.com/chapterize/chapterize/internal/report"
	"github.com/go-chi/chi/v5"
)

// handleSplitReport serves the job manifest rendered as HTML.
func (s *Server) handleSplitReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	markdown, err := os.ReadFile(job.ManifestPath())
	if err != nil {
		jsonError(w, "report not available yet", http.StatusNotFound)
		return
	}

	html, err := report.RenderHTML(string(markdown))
	if err != nil {
		s.log.Error("manifest render failed", "job_id", jobID, "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
