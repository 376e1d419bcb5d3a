package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/dashboard"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.dashboard == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard backend not configured")
		return
	}
	if _, ok := s.account(w, r); !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, dashboard.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := s.dashboard.UploadForDashboard(r.Context(), header.Filename, file)
	if err != nil {
		var serr *dashboard.StatusError
		if errors.As(err, &serr) {
			s.logger.Warn("dashboard backend rejected upload", zap.Int("status", serr.StatusCode), zap.String("file", header.Filename))
		} else {
			s.logger.Error("dashboard upload", zap.String("file", header.Filename), zap.Error(err))
		}
		writeError(w, http.StatusBadGateway, "dashboard backend failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":     data,
		"summary":  dashboard.Summarize(data),
		"markdown": dashboard.Markdown(data),
	})
}
