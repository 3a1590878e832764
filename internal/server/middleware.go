package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pfrederiksen/refsched/internal/access"
	"github.com/pfrederiksen/refsched/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxViewer
)

// requestID tags each request with an ID, reusing the caller's if present
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestID, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe logs and counts every routed request
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.opts.Metrics.RecordRequest(route, rec.status)

		fields := logger.Fields{
			"method":  r.Method,
			"route":   route,
			"status":  rec.status,
			"took_ms": time.Since(start).Milliseconds(),
		}
		if id, ok := r.Context().Value(ctxRequestID).(string); ok {
			fields["request_id"] = id
		}
		logger.Debug("HTTP request", fields)
	})
}

// basicAuth authenticates the caller and stores the viewer in the context
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		viewer, err := s.opts.Access.Authenticate(user, password)
		if err != nil {
			if errors.Is(err, access.ErrUnauthorized) {
				logger.Info("Rejected login", logger.Fields{"user": user})
				unauthorized(w)
				return
			}
			logger.Error("Authentication failed", logger.Fields{"user": user}, err)
			writeError(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxViewer, viewer)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="refsched", charset="UTF-8"`)
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func viewerFrom(ctx context.Context) *access.Viewer {
	v, _ := ctx.Value(ctxViewer).(*access.Viewer)
	return v
}
