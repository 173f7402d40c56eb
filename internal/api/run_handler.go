package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/engine"
	"github.com/shaiso/supercon/internal/repo"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxSpecBytes     = 1 << 20
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{Limit: defaultListLimit}
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		st := domain.RunStatus(status)
		switch st {
		case domain.RunStatusPending, domain.RunStatusRunning, domain.RunStatusSucceeded, domain.RunStatusFailed:
			filter.Status = st
		default:
			BadRequest(w, "invalid status")
			return
		}
	}

	var ok bool
	if filter.Limit, ok = intParam(q.Get("limit"), defaultListLimit); !ok || filter.Limit <= 0 || filter.Limit > maxListLimit {
		BadRequest(w, "invalid limit")
		return
	}
	if filter.Offset, ok = intParam(q.Get("offset"), 0); !ok || filter.Offset < 0 {
		BadRequest(w, "invalid offset")
		return
	}

	runs, err := h.runs.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	total, err := h.runs.Count(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, total)
}

// CreateRun создаёт run из WorkflowSpec (JSON или YAML в теле запроса).
// POST /api/v1/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSpecBytes))
	if err != nil {
		HandleBodyError(w, err)
		return
	}

	spec, err := domain.ParseSpec(body)
	if err != nil {
		InvalidSpec(w, err)
		return
	}
	spec = spec.WithDefaults()

	if err := engine.ValidateSpec(spec); err != nil {
		InvalidSpec(w, err)
		return
	}

	run := domain.NewRun(spec)
	if err := h.runs.Create(r.Context(), run); HandleRepoError(w, h.logger, err, "") {
		return
	}

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishRunPending(r.Context(), run.ID); err != nil {
			h.logger.Warn("failed to publish run.pending", "run_id", run.ID, "error", err)
		}
	}

	h.logger.Info("run created", "run_id", run.ID, "atoms", spec.Atoms.NumAtoms())
	Created(w, RunFromDomain(*run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// ListRunStages возвращает стадии run.
// GET /api/v1/runs/{id}/stages
func (h *Handler) ListRunStages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что run существует
	if _, err := h.runs.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	records, err := h.stages.ListByRunID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]StageResponse, len(records))
	for i, rec := range records {
		result[i] = StageFromDomain(rec)
	}

	List(w, result, len(result))
}

// intParam разбирает целый query-параметр; пустая строка даёт def.
func intParam(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
