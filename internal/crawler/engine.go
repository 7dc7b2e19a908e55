package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civ5archive/wikicrawler/internal/politeness"
	"github.com/civ5archive/wikicrawler/internal/progress"
)

// EngineConfig holds the settings for a crawl session.
type EngineConfig struct {
	SeedURL            string
	MaxArticles        int
	CheckpointInterval time.Duration
	ProgressInterval   time.Duration
}

// EngineStage tracks the crawl loop's lifecycle.
type EngineStage int32

// Crawl loop lifecycle stages.
const (
	StageIdle EngineStage = iota
	StageRunning
	StageDraining
	StageTerminated
)

// String returns the lowercase stage name.
func (s EngineStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageRunning:
		return "running"
	case StageDraining:
		return "draining"
	case StageTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of the crawl, safe to read from other
// goroutines (the status HTTP server uses it).
type Status struct {
	RunID     string `json:"run_id"`
	Stage     string `json:"stage"`
	Processed int64  `json:"processed"`
	Saved     int64  `json:"saved"`
	QueueLen  int64  `json:"queue_length"`
}

// Engine drives the breadth-first crawl: pop, classify, fetch, store,
// extract, enqueue, with periodic checkpoint and progress ticks. The loop
// is single-threaded; CrawlState is owned exclusively by Run and needs no
// locking. Cross-goroutine observers read the atomic counters instead.
type Engine struct {
	cfg         EngineConfig
	classifier  *Classifier
	fetcher     Fetcher
	extractor   *LinkExtractor
	store       *ArticleStore
	journal     *Journal
	checkpoints *CheckpointManager
	limiter     *politeness.Limiter
	emitter     progress.Emitter
	tracer      *Tracer
	logger      *zap.Logger
	runID       uuid.UUID

	stage     atomic.Int32
	processed atomic.Int64
	saved     atomic.Int64
	queueLen  atomic.Int64
}

// NewEngine constructs an Engine. The tracer and emitter are optional; all
// other collaborators are required.
func NewEngine(
	cfg EngineConfig,
	classifier *Classifier,
	fetcher Fetcher,
	extractor *LinkExtractor,
	store *ArticleStore,
	journal *Journal,
	checkpoints *CheckpointManager,
	limiter *politeness.Limiter,
	emitter progress.Emitter,
	tracer *Tracer,
	logger *zap.Logger,
) (*Engine, error) {
	if cfg.SeedURL == "" {
		return nil, errors.New("seed url is required")
	}
	if cfg.MaxArticles <= 0 {
		return nil, errors.New("article limit must be > 0")
	}
	if cfg.CheckpointInterval <= 0 || cfg.ProgressInterval <= 0 {
		return nil, errors.New("checkpoint and progress intervals must be > 0")
	}
	if classifier == nil || fetcher == nil || extractor == nil || store == nil ||
		journal == nil || checkpoints == nil || limiter == nil {
		return nil, errors.New("missing engine collaborator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:         cfg,
		classifier:  classifier,
		fetcher:     fetcher,
		extractor:   extractor,
		store:       store,
		journal:     journal,
		checkpoints: checkpoints,
		limiter:     limiter,
		emitter:     emitter,
		tracer:      tracer,
		logger:      logger,
		runID:       uuid.New(),
	}, nil
}

// Status returns the current counters for external observers.
func (e *Engine) Status() Status {
	return Status{
		RunID:     e.runID.String(),
		Stage:     EngineStage(e.stage.Load()).String(),
		Processed: e.processed.Load(),
		Saved:     e.saved.Load(),
		QueueLen:  e.queueLen.Load(),
	}
}

// Run executes the crawl until the frontier drains, the article limit is
// reached, or ctx is canceled. A final checkpoint is always attempted
// before returning, whatever the termination cause.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()

	state, resumed, err := e.checkpoints.Load()
	if err != nil {
		return fmt.Errorf("restore crawl state: %w", err)
	}
	if resumed {
		e.journal.Resume(e.cfg.SeedURL, e.cfg.MaxArticles, state.Processed, state.Saved)
		e.logger.Info("resuming crawl from checkpoint",
			zap.String("checkpoint", e.checkpoints.Path()),
			zap.Int("processed", state.Processed),
			zap.Int("saved", state.Saved),
			zap.Int("queue", state.Frontier.Len()),
		)
	} else {
		state = NewCrawlState(e.cfg.SeedURL)
		e.journal.Start(e.cfg.SeedURL, e.cfg.MaxArticles)
		e.logger.Info("starting fresh crawl",
			zap.String("seed", e.cfg.SeedURL),
			zap.Int("max_articles", e.cfg.MaxArticles),
		)
	}
	e.publishCounters(state)
	e.emit(state, progress.Event{Stage: progress.StageCrawlStart})
	e.stage.Store(int32(StageRunning))

	checkpointTicker := time.NewTicker(e.cfg.CheckpointInterval)
	defer checkpointTicker.Stop()
	progressTicker := time.NewTicker(e.cfg.ProgressInterval)
	defer progressTicker.Stop()

	var runErr error
	for {
		if state.Saved >= e.cfg.MaxArticles {
			e.logger.Info("article limit reached", zap.Int("limit", e.cfg.MaxArticles))
			break
		}
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		// The loop is single-threaded, so timers are serviced inline
		// between URLs rather than on their own goroutines.
		select {
		case <-checkpointTicker.C:
			e.checkpoint(state)
		case <-progressTicker.C:
			e.report(state)
		default:
		}

		key, err := state.Frontier.Pop()
		if err != nil {
			e.logger.Info("frontier drained")
			break
		}

		// Push dedupes at enqueue time, so this recheck only matters for
		// queues restored from snapshots written before a visit completed.
		if state.Frontier.Visited(key) {
			continue
		}
		state.Frontier.MarkVisited(key)
		state.Processed++
		e.publishCounters(state)

		if !e.classifier.InScope(key) {
			e.tracer.emit(key, TraceRejected)
			continue
		}

		if err := e.limiter.Wait(ctx, key); err != nil {
			runErr = ctx.Err()
			break
		}

		body, err := e.fetcher.Fetch(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			e.pageFailed(state, key, err)
			continue
		}
		e.tracer.emit(key, TraceFetched)

		filename, err := e.store.Save(key, body)
		if err != nil {
			e.pageFailed(state, key, err)
			continue
		}
		state.Saved++
		e.publishCounters(state)
		e.journal.Saved(key)
		e.tracer.emit(key, TraceSaved)
		e.logger.Info("article saved",
			zap.String("url", key),
			zap.String("file", filename),
			zap.Int("saved", state.Saved),
			zap.Int("limit", e.cfg.MaxArticles),
		)
		e.emit(state, progress.Event{
			Stage: progress.StagePageSaved,
			URL:   key,
			Bytes: int64(len(body)),
		})

		links, err := e.extractor.ExtractLinks(key, body)
		if err != nil {
			e.logger.Warn("link extraction failed", zap.String("url", key), zap.Error(err))
		}
		for _, link := range links {
			if state.Frontier.Push(link) {
				e.tracer.emit(link, TraceEnqueued)
			}
		}
		e.publishCounters(state)
	}

	e.stage.Store(int32(StageDraining))
	e.drain(state, start)
	e.stage.Store(int32(StageTerminated))

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		e.logger.Info("crawl interrupted", zap.Int("processed", state.Processed), zap.Int("saved", state.Saved))
	}
	return runErr
}

// drain writes the final checkpoint and journal summary. Failures here are
// logged, never fatal; the crawl result already persists on disk.
func (e *Engine) drain(state *CrawlState, start time.Time) {
	e.checkpoint(state)
	e.journal.Complete(time.Since(start), state.Processed, state.Saved)
	e.report(state)
	e.emit(state, progress.Event{Stage: progress.StageCrawlDone})
	e.logger.Info("crawl finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("processed", state.Processed),
		zap.Int("saved", state.Saved),
	)
}

func (e *Engine) checkpoint(state *CrawlState) {
	if err := e.checkpoints.Save(state, e.cfg.SeedURL); err != nil {
		// The previous checkpoint file remains intact and loadable.
		e.logger.Error("checkpoint save failed", zap.Error(err))
		return
	}
	e.emit(state, progress.Event{Stage: progress.StageCheckpoint})
}

func (e *Engine) report(state *CrawlState) {
	e.logger.Info("crawl progress",
		zap.Int("processed", state.Processed),
		zap.Int("saved", state.Saved),
		zap.Int("limit", e.cfg.MaxArticles),
		zap.Int("queue", state.Frontier.Len()),
	)
	e.emit(state, progress.Event{Stage: progress.StageHeartbeat})
}

func (e *Engine) pageFailed(state *CrawlState, rawURL string, err error) {
	e.journal.Error(rawURL, err)
	e.tracer.emit(rawURL, TraceFailed)

	fields := []zap.Field{zap.String("url", rawURL), zap.Error(err)}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.Kind == FetchErrStatus {
		fields = append(fields, zap.Int("status", fetchErr.StatusCode))
	}
	e.logger.Warn("page failed", fields...)

	e.emit(state, progress.Event{
		Stage: progress.StagePageError,
		URL:   rawURL,
		Note:  err.Error(),
	})
}

func (e *Engine) publishCounters(state *CrawlState) {
	e.processed.Store(int64(state.Processed))
	e.saved.Store(int64(state.Saved))
	e.queueLen.Store(int64(state.Frontier.Len()))
}

func (e *Engine) emit(state *CrawlState, evt progress.Event) {
	if e.emitter == nil {
		return
	}
	evt.RunID = progress.UUIDToBytes(e.runID)
	evt.TS = time.Now().UTC()
	evt.Processed = int64(state.Processed)
	evt.Saved = int64(state.Saved)
	evt.QueueLen = int64(state.Frontier.Len())
	e.emitter.Emit(evt)
}
