package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/engine"
	"github.com/shaiso/supercon/internal/telemetry"
)

// Default configuration values.
const (
	defaultShell     = "/bin/sh"
	defaultWaitDelay = 10 * time.Second
	stderrTailBytes  = 2048
)

// ProcessExecutor запускает движок как внешний процесс:
//
//	cd <workDir> && <command> < <input> > <output>
//
// Входной файл пишется перед запуском, лог движка — в OutputFile.
// После выхода проверяется, что все объявленные артефакты созданы.
type ProcessExecutor struct {
	shell     string
	env       []string
	render    func(*domain.Job) (string, error)
	waitDelay time.Duration
	logger    *slog.Logger
}

// ProcessConfig — конфигурация ProcessExecutor.
type ProcessConfig struct {
	// Shell — интерпретатор команды (default: /bin/sh).
	Shell string

	// Env — дополнительные переменные окружения (KEY=VALUE), например OMP_NUM_THREADS.
	Env []string

	// Render — формирование входного файла (default: engine.RenderInput).
	Render func(*domain.Job) (string, error)

	// WaitDelay — сколько ждать выхода после отмены context (default: 10s).
	WaitDelay time.Duration

	// Logger
	Logger *slog.Logger
}

// NewProcessExecutor создаёт ProcessExecutor.
func NewProcessExecutor(cfg ProcessConfig) *ProcessExecutor {
	shell := cfg.Shell
	if shell == "" {
		shell = defaultShell
	}

	render := cfg.Render
	if render == nil {
		render = engine.RenderInput
	}

	waitDelay := cfg.WaitDelay
	if waitDelay <= 0 {
		waitDelay = defaultWaitDelay
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ProcessExecutor{
		shell:     shell,
		env:       cfg.Env,
		render:    render,
		waitDelay: waitDelay,
		logger:    logger,
	}
}

// Execute выполняет задание и блокируется до выхода процесса.
func (e *ProcessExecutor) Execute(ctx context.Context, workDir string, job *domain.Job) (*domain.JobResult, error) {
	if strings.TrimSpace(job.Command) == "" {
		return nil, &JobExecutionError{Stage: job.Stage, ExitCode: -1, Err: ErrEmptyCommand}
	}

	input, err := e.render(job)
	if err != nil {
		return nil, fmt.Errorf("render %s input: %w", job.Stage, err)
	}

	inputPath := filepath.Join(workDir, job.InputFile)
	outputPath := filepath.Join(workDir, job.OutputFile)

	if err := os.WriteFile(inputPath, []byte(input), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", inputPath, err)
	}

	stdin, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer stdin.Close()

	stdout, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer stdout.Close()

	// Логгер workflow из ctx уже содержит run_id и work_dir
	logger := telemetry.WithStage(telemetry.FromContext(ctx, e.logger), string(job.Stage))

	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd := exec.CommandContext(ctx, e.shell, "-c", job.Command)
	cmd.Dir = workDir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = e.waitDelay
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	logger.Info("starting engine",
		"command", job.Command,
		"input", job.InputFile,
		"output", job.OutputFile,
	)

	started := time.Now()
	runErr := cmd.Run()
	duration := time.Since(started)

	result := &domain.JobResult{
		Stage:      job.Stage,
		Name:       job.Name,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Duration:   duration,
	}
	if job.XMLFile != "" {
		result.XMLPath = filepath.Join(workDir, job.XMLFile)
	}

	if runErr != nil {
		execErr := &JobExecutionError{
			Stage:    job.Stage,
			Command:  job.Command,
			ExitCode: -1,
			Stderr:   stderr.String(),
		}

		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			execErr.Err = fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case errors.As(runErr, &exitErr):
			execErr.ExitCode = exitErr.ExitCode()
			execErr.Err = ErrNonZeroExit
		default:
			execErr.Err = fmt.Errorf("%w: %w", ErrStart, runErr)
		}
		result.ExitCode = execErr.ExitCode

		logger.Error("engine failed",
			"exit_code", execErr.ExitCode,
			"duration", duration,
			"error", execErr,
		)
		return result, execErr
	}

	for _, artifact := range job.Artifacts {
		if _, err := os.Stat(filepath.Join(workDir, artifact)); err != nil {
			logger.Error("declared artifact missing", "artifact", artifact)
			return result, &JobExecutionError{
				Stage:    job.Stage,
				Command:  job.Command,
				Artifact: artifact,
				Err:      ErrMissingArtifact,
			}
		}
	}

	logger.Info("engine finished", "duration", duration)
	return result, nil
}

// tailBuffer хранит последние limit байт записанного вывода.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - t.limit; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(t.buf.String())
}
