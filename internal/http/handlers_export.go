package http

import (
	"fmt"
	"net/http"

	applog "pocketwise/internal/log"
	"pocketwise/internal/snapshot"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	text, filename, err := s.export.ExportCSV(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	data, filename, err := s.export.ExportXLSX(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	text, err := readUploadBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read request body")
		return
	}

	report, err := s.export.ImportCSV(r.Context(), userID, text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	s.logger.InfoContext(r.Context(), "CSV import finished",
		applog.FieldUserID, userID,
		"imported", report.Imported,
		"skipped", len(report.Skipped))

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	state, err := s.export.Backup(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// The stored-blob form, so the output feeds straight back into restore.
	data, err := snapshot.Serialize(state)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pocketwise_backup.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	text, err := readBody(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read request body")
		return
	}

	report, err := s.export.Restore(r.Context(), userID, []byte(text))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	s.logger.InfoContext(r.Context(), "Backup restored",
		applog.FieldUserID, userID,
		"transactions", report.Transactions,
		"goals", report.Goals,
		"activities", report.Activities)

	writeJSON(w, http.StatusOK, report)
}
