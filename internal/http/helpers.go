package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pocketwise/internal/auth"
	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
	"pocketwise/internal/storage"
)

// maxBodyBytes caps request bodies; CSV imports are the largest payload
// the API accepts.
const maxBodyBytes = 2 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// validationErrors are the domain rejections that map to a 400 with the
// rule's own message; everything else stays generic.
var validationErrors = []error{
	core.ErrEmptyDescription,
	core.ErrInvalidAmount,
	core.ErrEmptyCategory,
	core.ErrInvalidType,
	core.ErrDescriptionTooLong,
	core.ErrAmountPrecision,
	core.ErrInvalidDateFormat,
	core.ErrInvalidDate,
	core.ErrFutureDate,
	core.ErrEmptyGoalTitle,
	core.ErrInvalidGoalTarget,
	core.ErrInvalidAge,
	core.ErrEmptyGoals,
}

// writeServiceError translates a service-layer error into a response:
// validation failures carry their message at 400, missing rows are 404,
// and anything else is logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, ve := range validationErrors {
		if errors.Is(err, ve) {
			writeError(w, r, http.StatusBadRequest, ve.Error())
			return
		}
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	s.logger.ErrorContext(r.Context(), "Request failed",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err.Error())
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

// decodeBody reads a JSON request body into dst, rejecting unknown fields
// so typos surface as 400s instead of silently dropped data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// userID pulls the authenticated user from the request context. Routes are
// registered behind auth.Middleware, so a miss is a wiring bug.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return id, true
}

// parseYearMonth extracts year and month query parameters, defaulting to
// the current calendar month.
func parseYearMonth(r *http.Request, now time.Time) (year, month int) {
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, month
}

// sanitizeInput trims whitespace and strips control characters from
// free-text fields before they reach validation.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// readBody drains a size-capped request body as text.
func readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readUploadBody accepts either a multipart upload (the "file" field) or a
// raw text body, whichever the client sent.
func readUploadBody(w http.ResponseWriter, r *http.Request) (string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return readBody(w, r)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return "", err
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
