package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Reports
// ============================================================

func dashboardHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/dashboard")
		defer span.End()

		state, err := svc.Dashboard(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func trendHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/trend")
		defer span.End()

		offset := 0
		if v := r.URL.Query().Get("monthOffset"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "monthOffset must be an integer")
				return
			}
			if parsed > 0 {
				writeError(w, http.StatusBadRequest, "future months are not navigable")
				return
			}
			offset = parsed
		}

		trend, err := svc.Trend(ctx, UserIDFromContext(ctx), offset)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"trend": trend})
	}
}

// streamHandler serves the derived state as server-sent events. Every
// collection change pushes one complete recomputed state.
func streamHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/stream")
		defer span.End()

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		userID := UserIDFromContext(ctx)
		states, err := svc.Subscribe(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// The server's WriteTimeout would sever long-lived streams, so
		// the deadline is cleared for this response only.
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("stream: clearing write deadline failed", zap.Error(err))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case state, ok := <-states:
				if !ok {
					return
				}
				if err := writeSSE(w, "state", state); err != nil {
					logger.Debug("stream: client gone",
						zap.String("user_id", userID),
						zap.Error(err),
					)
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, state domain.DerivedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
