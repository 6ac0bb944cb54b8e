package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/dutyroster/internal/directory"
	"github.com/hyperjump/dutyroster/internal/fetch"
	"github.com/hyperjump/dutyroster/internal/models"
	"github.com/hyperjump/dutyroster/internal/period"
	"github.com/hyperjump/dutyroster/internal/publish"
	"github.com/hyperjump/dutyroster/internal/render"
	"github.com/hyperjump/dutyroster/internal/roster"
	"github.com/hyperjump/dutyroster/internal/storage"
	"github.com/hyperjump/dutyroster/internal/workbook"
	"go.uber.org/zap"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
	suggestDistance      = 2
	suggestCount         = 5
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := s.storage.CountSnapshots(ctx)
	if err != nil {
		s.logger.Error("status: count snapshots failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"snapshots": count,
		"timezone":  s.location.String(),
		"today":     period.Day(s.now(), s.location).Format("2006-01-02"),
	}
	if latest, err := s.storage.ListSnapshots(ctx, 0, 1); err == nil && len(latest) > 0 {
		resp["latest"] = latest[0]
	}
	if s.directory != nil {
		if n, err := s.directory.DocCount(); err == nil {
			resp["directory_entries"] = n
		}
	}
	if len(s.diskPaths) > 0 {
		if usage, err := storage.DiskUsageBytes(s.diskPaths...); err == nil {
			resp["disk_usage_bytes"] = usage
		}
	}
	resp["publish_enabled"] = s.publisher != nil
	s.respondJSON(w, http.StatusOK, resp)
}

// handleRoster returns the newest snapshot for ?date=YYYY-MM-DD, today by default.
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	snap, err := s.storage.LatestSnapshot(r.Context(), date)
	if err != nil {
		s.respondStorageError(w, err, "no roster published for "+date)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

type nowDepartment struct {
	Name    string         `json:"name"`
	Entries []models.Entry `json:"entries"`
}

type nowResponse struct {
	Date           string          `json:"date"`
	ActiveCategory models.Category `json:"active_category"`
	SnapshotID     string          `json:"snapshot_id"`
	Departments    []nowDepartment `json:"departments"`
}

// handleRosterNow lists who is on the shift running right now. The active
// category is recomputed from the clock since the snapshot may be hours old.
func (s *Server) handleRosterNow(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.location)
	date := period.Day(now, s.location).Format("2006-01-02")
	snap, err := s.storage.LatestSnapshot(r.Context(), date)
	if err != nil {
		s.respondStorageError(w, err, "no roster published for "+date)
		return
	}
	active := roster.CurrentShiftKey(now)
	resp := nowResponse{
		Date:           date,
		ActiveCategory: active,
		SnapshotID:     snap.ID,
		Departments:    []nowDepartment{},
	}
	if snap.Roster != nil {
		for _, d := range snap.Roster.Departments {
			entries := d.Buckets[active]
			if entries == nil {
				entries = []models.Entry{}
			}
			resp.Departments = append(resp.Departments, nowDepartment{Name: d.Name, Entries: entries})
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type employeesResponse struct {
	Hits        []models.EmployeeHit   `json:"hits"`
	Suggestions []directory.Suggestion `json:"suggestions,omitempty"`
}

func (s *Server) handleEmployees(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		s.respondError(w, http.StatusNotImplemented, "employee directory not enabled")
		return
	}
	q := r.URL.Query()
	query := models.EmployeeQuery{
		Query:      strings.TrimSpace(q.Get("q")),
		Department: q.Get("department"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = n
	}
	if v := q.Get("fuzzy"); v != "" {
		fuzzy, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid fuzzy flag")
			return
		}
		query.Fuzzy = fuzzy
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("employee search request", zap.String("query", query.Query), zap.Bool("fuzzy", query.Fuzzy))
	hits, err := s.directory.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("employee search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := employeesResponse{Hits: hits}
	if len(hits) == 0 {
		resp.Suggestions = s.directory.Suggest(query.Query, suggestDistance, suggestCount)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := intParam(r, "limit", defaultSnapshotLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}
	ctx := r.Context()
	snaps, err := s.storage.ListSnapshots(ctx, offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountSnapshots(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snaps,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.storage.GetSnapshot(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, err, "snapshot not found")
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

type publishRequest struct {
	Date string `json:"date,omitempty"`
}

type publishResponse struct {
	Snapshot      *models.Snapshot `json:"snapshot"`
	MonthKey      string           `json:"month_key,omitempty"`
	MonthMismatch bool             `json:"month_mismatch,omitempty"`
	Days          []string         `json:"days,omitempty"`
	FromCache     bool             `json:"from_cache,omitempty"`
	Problems      []models.Problem `json:"problems,omitempty"`
	Took          string           `json:"took"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		s.respondError(w, http.StatusNotImplemented, "publishing not enabled")
		return
	}
	var req publishRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	src := s.source
	if req.Date != "" {
		date, err := period.ParseDate(req.Date, s.location)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		src.Date = date
	}
	s.logger.Debug("publish request", zap.String("date", req.Date))
	res, err := s.publisher.Publish(r.Context(), src)
	if err != nil {
		s.logger.Error("publish failed", zap.Error(err))
		s.respondError(w, publishStatus(err), err.Error())
		return
	}
	snap := *res.Snapshot
	snap.Roster = nil
	s.respondJSON(w, http.StatusCreated, publishResponse{
		Snapshot:      &snap,
		MonthKey:      res.MonthKey,
		MonthMismatch: res.MonthMismatch,
		Days:          res.Days,
		FromCache:     res.FromCache,
		Problems:      res.Roster.Problems,
		Took:          res.Duration.String(),
	})
}

// handleIndex renders today's roster page, falling back to the newest
// snapshot of any date.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := period.Day(s.now(), s.location).Format("2006-01-02")
	snap, err := s.storage.LatestSnapshot(ctx, today)
	if errors.Is(err, storage.ErrNotFound) {
		var recent []*models.Snapshot
		recent, err = s.storage.ListSnapshots(ctx, 0, 1)
		if err == nil && len(recent) == 0 {
			err = storage.ErrNotFound
		}
		if err == nil {
			snap, err = s.storage.GetSnapshot(ctx, recent[0].ID)
		}
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "No roster has been published yet.", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.renderer == nil {
		http.Error(w, "renderer unavailable", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	meta := render.Meta{
		Source:      snap.Source,
		SourceID:    snap.SourceID,
		SnapshotID:  snap.ID,
		MonthKey:    snap.MonthKey,
		GeneratedAt: snap.CreatedAt.In(s.location),
	}
	if err := s.renderer.Page(&buf, snap.Roster, meta); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return period.Day(s.now(), s.location).Format("2006-01-02"), true
	}
	date, err := period.ParseDate(v, s.location)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return date.Format("2006-01-02"), true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// publishStatus maps pipeline errors onto HTTP status codes.
func publishStatus(err error) int {
	switch {
	case errors.Is(err, publish.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetch.ErrNotSpreadsheet), errors.Is(err, fetch.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, roster.ErrNoRecognizableSheets),
		errors.Is(err, workbook.ErrUnsupportedFormat),
		errors.Is(err, workbook.ErrEmptyWorkbook):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondStorageError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, notFound)
		return
	}
	s.logger.Error("storage lookup failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
