package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/report"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

// parseFilterSpec reads the filter query parameters shared by the
// transaction list and summary endpoints. Forward month navigation is
// rejected here: the report engine itself is offset-agnostic.
func parseFilterSpec(r *http.Request) (report.Spec, error) {
	q := r.URL.Query()

	spec := report.Spec{
		Mode:     q.Get("mode"),
		Type:     q.Get("type"),
		Category: q.Get("category"),
	}
	if spec.Type == "" {
		spec.Type = report.TypeAll
	}

	switch spec.Mode {
	case "", report.ModeToday, report.ModeLast7Days, report.ModeMonth, report.ModeCustom:
	default:
		return report.Spec{}, &domain.ErrValidation{Field: "mode", Message: "unknown filter mode"}
	}

	if v := q.Get("monthOffset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return report.Spec{}, &domain.ErrValidation{Field: "monthOffset", Message: "must be an integer"}
		}
		if offset > 0 {
			return report.Spec{}, &domain.ErrValidation{Field: "monthOffset", Message: "future months are not navigable"}
		}
		spec.MonthOffset = offset
	}

	if v := q.Get("start"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return report.Spec{}, &domain.ErrValidation{Field: "start", Message: "must be RFC3339 or YYYY-MM-DD"}
		}
		spec.Start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return report.Spec{}, &domain.ErrValidation{Field: "end", Message: "must be RFC3339 or YYYY-MM-DD"}
		}
		spec.End = &t
	}

	return spec, nil
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Local(), nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var conflict *domain.ErrConflict
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream service failure")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
