package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pfrederiksen/refsched/internal/access"
	"github.com/pfrederiksen/refsched/internal/calendar"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/schedule"
)

// maxPasswordBytes bounds /api/hash bodies
const maxPasswordBytes = 4096

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   s.now().Unix(),
	})
}

// handleHash accepts {"password": "..."} or a form field named password
func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPasswordBytes)

	var password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		password = body.Password
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		password = r.PostForm.Get("password")
	}

	if password == "" {
		writeError(w, http.StatusBadRequest, "password must not be empty")
		return
	}

	select {
	case s.hashing <- struct{}{}:
		defer func() { <-s.hashing }()
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	}

	encoded, err := s.opts.Hasher.Hash(password)
	if err != nil {
		logger.Error("Hashing password failed", nil, err)
		writeError(w, http.StatusInternalServerError, "hashing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": encoded})
}

type groupsResponse struct {
	Admin    bool                `json:"admin"`
	Groups   []access.Group      `json:"groups"`
	Referees []match.RefereeName `json:"referees"`
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFrom(r.Context())

	referees := s.opts.Access.Allowed(viewer)
	if referees == nil {
		referees = []match.RefereeName{}
	}
	writeJSON(w, http.StatusOK, groupsResponse{
		Admin:    s.opts.Access.IsAdmin(viewer),
		Groups:   s.opts.Access.Groups(viewer),
		Referees: referees,
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	groupBy, err := schedule.ParseGroupBy(r.URL.Query().Get("group_by"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched, ok := s.buildSchedule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, schedule.NewReport(sched, groupBy, s.opts.LeagueNames, s.now()))
}

func (s *Server) handleScheduleICS(w http.ResponseWriter, r *http.Request) {
	sched, ok := s.buildSchedule(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="refsched.ics"`)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, calendar.GenerateICS(sched.Matches(), s.opts.LeagueNames, s.now()))
}

// buildSchedule runs the searches for the authorized subset of ?refs.
// It writes the error response itself and reports whether to continue.
func (s *Server) buildSchedule(w http.ResponseWriter, r *http.Request) (*schedule.Schedule, bool) {
	requested, err := match.ParseRefereeNames(r.URL.Query()["refs"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	names := s.opts.Access.Filter(viewerFrom(r.Context()), requested)

	sched, err := s.opts.Schedules.Build(r.Context(), names)
	if err != nil {
		var parseErr *match.ParseError
		switch {
		case errors.Is(err, schedule.ErrUnavailable):
			logger.Warn("Portal unavailable", logger.Fields{"error": err.Error()})
			writeError(w, http.StatusServiceUnavailable, "schedule temporarily unavailable")
		case errors.As(err, &parseErr):
			logger.Error("Listing could not be parsed", logger.Fields{"field": parseErr.Field}, err)
			writeError(w, http.StatusBadGateway, "portal listing could not be read")
		default:
			logger.Error("Building schedule failed", nil, err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return nil, false
	}
	return sched, true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response failed", logger.Fields{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
