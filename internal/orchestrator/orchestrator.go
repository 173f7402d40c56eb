package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/dataschema"
	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/elph"
	"github.com/shaiso/supercon/internal/mq"
	"github.com/shaiso/supercon/internal/steps"
	"github.com/shaiso/supercon/internal/worker"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 100
	defaultWorkRoot     = "./runs"
)

// StructureReader читает релаксированную структуру из structured output.
type StructureReader interface {
	ReadStructure(path string) (domain.Structure, error)
}

// CouplingParser разбирает файл lambda.
type CouplingParser func(path string) ([]domain.CouplingRecord, error)

// RunStore — хранилище runs для service mode.
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListPending(ctx context.Context, limit int) ([]domain.Run, error)

	// MarkRunning атомарно переводит PENDING run в RUNNING.
	// Возвращает repo.ErrInvalidState, если run уже не PENDING.
	MarkRunning(ctx context.Context, id uuid.UUID, workDir string) (*domain.Run, error)

	Update(ctx context.Context, run *domain.Run) error
}

// StageStore — хранилище записей о стадиях.
type StageStore interface {
	Create(ctx context.Context, rec *domain.StageRecord) error
	Update(ctx context.Context, rec *domain.StageRecord) error
}

// EventPublisher публикует события стадий и runs.
type EventPublisher interface {
	PublishStageCompleted(ctx context.Context, payload mq.StageCompletedPayload) error
	PublishRunCompleted(ctx context.Context, payload mq.RunCompletedPayload) error
}

// ArtifactArchiver сохраняет файлы рабочей директории run.
type ArtifactArchiver interface {
	ArchiveRun(ctx context.Context, runID uuid.UUID, workDir string) (int, error)
}

// Orchestrator выполняет workflow расчёта Tc.
//
// Orchestrator работает в двух режимах:
//   - RunWorkflow — синхронный запуск одного workflow (CLI, тесты)
//   - Start/Stop — сервис: забирает PENDING runs из RabbitMQ и БД,
//     выполняет их по одному, сохраняет стадии и результаты
//
// Стадии выполняются строго последовательно. Первая ошибка
// прерывает workflow, оставшиеся стадии не запускаются.
type Orchestrator struct {
	// Workflow
	executor  worker.Executor
	reader    StructureReader
	parse     CouplingParser
	pipeline  *steps.Pipeline
	pseudoDir string
	mu        float64
	observer  Observer

	// Рабочие директории в процессе выполнения
	dirs  map[string]struct{}
	dirMu sync.Mutex

	// Service mode
	runs      RunStore
	stages    StageStore
	publisher EventPublisher
	archiver  ArtifactArchiver
	conn      *mq.Connection
	workRoot  string

	queue    chan uuid.UUID
	queued   map[uuid.UUID]struct{}
	queuedMu sync.Mutex

	consumer *mq.Consumer

	// Configuration
	pollInterval time.Duration
	batchSize    int

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Executor запускает стадии движка (default: ProcessExecutor).
	Executor worker.Executor

	// Reader читает XML релаксации (default: dataschema.Reader).
	Reader StructureReader

	// ParseCoupling разбирает файл lambda (default: elph.ParseCouplingFile).
	ParseCoupling CouplingParser

	// Pipeline — стадии движка (default: steps.DefaultPipeline).
	Pipeline *steps.Pipeline

	// PseudoDir — директория псевдопотенциалов.
	PseudoDir string

	// Mu — кулоновский псевдопотенциал μ*. nil — elph.DefaultMu,
	// явный 0 передаётся в формулу как есть.
	Mu *float64

	// Observer получает уведомления о стадиях (метрики и т.п.).
	Observer Observer

	// Service mode
	Runs      RunStore
	Stages    StageStore
	Publisher EventPublisher
	Archiver  ArtifactArchiver
	Conn      *mq.Connection

	// WorkRoot — корень рабочих директорий runs: <WorkRoot>/<run_id>.
	WorkRoot string

	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество runs за один poll (default: 100)

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	executor := cfg.Executor
	if executor == nil {
		executor = worker.NewProcessExecutor(worker.ProcessConfig{Logger: logger})
	}

	var reader StructureReader = dataschema.Reader{}
	if cfg.Reader != nil {
		reader = cfg.Reader
	}

	parse := cfg.ParseCoupling
	if parse == nil {
		parse = elph.ParseCouplingFile
	}

	pipeline := cfg.Pipeline
	if pipeline == nil {
		pipeline = steps.DefaultPipeline()
	}

	mu := elph.DefaultMu
	if cfg.Mu != nil {
		mu = *cfg.Mu
	}

	workRoot := cfg.WorkRoot
	if workRoot == "" {
		workRoot = defaultWorkRoot
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Orchestrator{
		executor:     executor,
		reader:       reader,
		parse:        parse,
		pipeline:     pipeline,
		pseudoDir:    cfg.PseudoDir,
		mu:           mu,
		observer:     cfg.Observer,
		dirs:         make(map[string]struct{}),
		runs:         cfg.Runs,
		stages:       cfg.Stages,
		publisher:    cfg.Publisher,
		archiver:     cfg.Archiver,
		conn:         cfg.Conn,
		workRoot:     workRoot,
		queue:        make(chan uuid.UUID, batchSize),
		queued:       make(map[uuid.UUID]struct{}),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start запускает service mode.
//
// Запускает:
//   - Consumer для runs.pending (если задано соединение с RabbitMQ)
//   - Polling горутину для fallback
//   - Цикл выполнения runs (по одному за раз)
func (o *Orchestrator) Start(ctx context.Context) error {
	if o.runs == nil {
		return ErrServiceNotConfigured
	}

	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting orchestrator",
		"poll_interval", o.pollInterval,
		"batch_size", o.batchSize,
		"work_root", o.workRoot,
	)

	if o.conn != nil {
		o.consumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
			Queue:    mq.QueueRunsPending,
			Types:    []mq.MessageType{mq.MessageTypeRunPending},
			Handler:  o.handleRunPending,
			Prefetch: 10,
		})

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := o.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Error("run consumer error", "error", err)
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.pollLoop(ctx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runLoop(ctx)
	}()

	o.logger.Info("orchestrator started")
	return nil
}

// Stop останавливает Orchestrator.
// Выполняемая стадия прерывается, run завершается FAILED.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}
	if o.consumer != nil {
		o.consumer.Stop()
	}

	o.wg.Wait()

	o.logger.Info("orchestrator stopped", "queued_runs", o.QueuedRuns())
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// pollLoop — цикл polling для fallback.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте (подхватываем runs созданные пока были выключены)
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (o *Orchestrator) poll(ctx context.Context) {
	runs, err := o.runs.ListPending(ctx, o.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Error("failed to list pending runs", "error", err)
		}
		return
	}

	if len(runs) == 0 {
		return
	}

	o.logger.Debug("poll found pending runs", "count", len(runs))

	for i := range runs {
		if err := o.enqueue(runs[i].ID); err != nil {
			o.logger.Debug("run not enqueued", "run_id", runs[i].ID, "reason", err)
			return
		}
	}
}

// runLoop выполняет runs из очереди по одному.
func (o *Orchestrator) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case runID := <-o.queue:
			if err := o.processRun(ctx, runID); err != nil {
				if errors.Is(err, ErrRunNotPending) {
					o.logger.Debug("run skipped", "run_id", runID, "reason", err)
				} else {
					o.logger.Error("failed to process run", "run_id", runID, "error", err)
				}
			}
			o.dequeue(runID)
		}
	}
}

// enqueue ставит run в очередь выполнения. Повторная постановка
// уже ожидающего или выполняющегося run игнорируется.
func (o *Orchestrator) enqueue(runID uuid.UUID) error {
	if o.IsStopped() {
		return ErrOrchestratorStopped
	}

	o.queuedMu.Lock()
	defer o.queuedMu.Unlock()

	if _, ok := o.queued[runID]; ok {
		return nil
	}

	select {
	case o.queue <- runID:
		o.queued[runID] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// dequeue снимает отметку о постановке run в очередь.
func (o *Orchestrator) dequeue(runID uuid.UUID) {
	o.queuedMu.Lock()
	defer o.queuedMu.Unlock()
	delete(o.queued, runID)
}

// QueuedRuns возвращает количество runs в очереди и в работе.
func (o *Orchestrator) QueuedRuns() int {
	o.queuedMu.Lock()
	defer o.queuedMu.Unlock()
	return len(o.queued)
}
