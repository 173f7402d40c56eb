package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/domain"
)

// Run DTOs

// RunResponse — ответ с run.
type RunResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	Spec        domain.WorkflowSpec `json:"spec"`
	WorkDir     string              `json:"work_dir,omitempty"`
	Results     []domain.TcResult   `json:"results,omitempty"`
	FailedStage string              `json:"failed_stage,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	DurationMs  int64               `json:"duration_ms,omitempty"`
	Error       string              `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:          r.ID,
		Status:      string(r.Status),
		Spec:        r.Spec,
		WorkDir:     r.WorkDir,
		Results:     r.Results,
		FailedStage: string(r.FailedStage),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		DurationMs:  r.Duration().Milliseconds(),
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
	}
}

// Stage DTOs

// StageResponse — ответ с записью стадии.
type StageResponse struct {
	ID         uuid.UUID  `json:"id"`
	RunID      uuid.UUID  `json:"run_id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	Command    string     `json:"command,omitempty"`
	InputFile  string     `json:"input_file,omitempty"`
	OutputFile string     `json:"output_file,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs int64      `json:"duration_ms,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// StageFromDomain конвертирует domain.StageRecord в StageResponse.
func StageFromDomain(s domain.StageRecord) StageResponse {
	return StageResponse{
		ID:         s.ID,
		RunID:      s.RunID,
		Stage:      string(s.Stage),
		Status:     string(s.Status),
		Command:    s.Command,
		InputFile:  s.InputFile,
		OutputFile: s.OutputFile,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		DurationMs: s.Duration().Milliseconds(),
		Error:      s.Error,
	}
}
