package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cuisine-engine/backend/internal/cache"
	"github.com/cuisine-engine/backend/internal/cleaning"
	"github.com/cuisine-engine/backend/internal/config"
	"github.com/cuisine-engine/backend/internal/dataset"
	"github.com/cuisine-engine/backend/internal/metrics"
	"github.com/cuisine-engine/backend/internal/search"
)

// DefaultWatchDelay is how long Watch waits for writes to settle before loading.
const DefaultWatchDelay = 500 * time.Millisecond

// ErrNotReady is returned by queries issued before the first successful load.
var ErrNotReady = errors.New("engine: index not built yet")

// Engine loads the dataset, keeps the similarity index and answers queries
type Engine struct {
	Config *config.Config
	Logger *logrus.Entry
	Source dataset.Source
	Cache  *cache.IndexCache

	// WatchDelay debounces bursts of file events seen by Watch.
	WatchDelay time.Duration

	// State
	mu       sync.RWMutex
	snapshot *snapshot
	loadMu   sync.Mutex

	// Stats
	Stats EngineStats
}

// snapshot is one immutable generation of loaded data.
type snapshot struct {
	index    *search.Index
	cuisines []string
}

type EngineStats struct {
	RawRows     int
	SampledRows int
	CleanRows   int
	Vocabulary  int
	Loads       int64
	LastLoad    time.Time
	LastError   string
}

// Status is a point-in-time view of the engine.
type Status struct {
	Ready bool
	EngineStats
}

func NewEngine(cfg *config.Config, logger *logrus.Entry, src dataset.Source) *Engine {
	return &Engine{
		Config: cfg,
		Logger: logger,
		Source: src,
		Cache:  cache.NewIndexCache(logger.WithField("component", "index_cache"), search.WithMaxFeatures(cfg.Index.MaxFeatures)),

		WatchDelay: DefaultWatchDelay,
	}
}

// NewSource builds the dataset source named in the configuration.
func NewSource(cfg config.DatasetConfig, logger *logrus.Entry) (dataset.Source, error) {
	switch cfg.Source {
	case "csv":
		return dataset.NewCSVSource(cfg.Path), nil
	case "hub":
		return dataset.NewHubSource(dataset.HubOptions{
			BaseURL:   cfg.HubURL,
			Dataset:   cfg.HubName,
			Config:    cfg.HubConfig,
			Split:     cfg.HubSplit,
			PageSize:  cfg.HubPageSize,
			Limit:     cfg.FetchLimit,
			RateLimit: rate.Limit(cfg.HubRate),
			Timeout:   cfg.RequestTimeout,
		}, logger.WithField("component", "hub_source")), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

// Load reads the source, samples and cleans the rows, and builds (or reuses)
// the similarity index. On failure the previous snapshot stays live.
func (e *Engine) Load(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	err := e.load(ctx)
	metrics.RecordLoad(err)

	e.mu.Lock()
	if err != nil {
		e.Stats.LastError = err.Error()
	} else {
		e.Stats.LastError = ""
	}
	e.mu.Unlock()

	return err
}

func (e *Engine) load(ctx context.Context) error {
	log := e.Logger.WithField("source", e.Source.Name())

	// 1. Fetch
	raw, err := e.Source.Load(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load dataset")
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	// 2. Sample
	sampled := dataset.Sample(raw, e.Config.Dataset.MaxRows, e.Config.Dataset.Seed)

	// 3. Clean
	records, report := cleaning.Preprocess(sampled, cleaning.DefaultColumns)
	log.WithFields(logrus.Fields{
		"input":         report.Input,
		"missing_field": report.MissingField,
		"bad_rating":    report.BadRating,
		"rejected_name": report.RejectedName,
		"duplicates":    report.Duplicates,
		"output":        report.Output,
	}).Debug("Preprocessed dataset")
	metrics.RecordDatasetRows(len(raw), len(sampled), len(records))

	// 4. Index
	idx, hit, err := e.Cache.GetOrBuild(records)
	if err != nil {
		log.WithError(err).Error("Failed to build similarity index")
		return fmt.Errorf("failed to build index: %w", err)
	}

	snap := &snapshot{
		index:    idx,
		cuisines: cleaning.Cuisines(records),
	}

	e.mu.Lock()
	e.snapshot = snap
	e.Stats.RawRows = len(raw)
	e.Stats.SampledRows = len(sampled)
	e.Stats.CleanRows = len(records)
	e.Stats.Vocabulary = idx.VocabularySize()
	e.Stats.Loads++
	e.Stats.LastLoad = time.Now()
	e.mu.Unlock()

	log.WithFields(logrus.Fields{
		"raw":       len(raw),
		"sampled":   len(sampled),
		"clean":     len(records),
		"cuisines":  len(snap.cuisines),
		"cache_hit": hit,
	}).Info("Dataset loaded")

	return nil
}

// Reload discards the cached index and loads again.
func (e *Engine) Reload(ctx context.Context) error {
	e.Cache.Invalidate()
	return e.Load(ctx)
}

// Recommend returns up to topN restaurants for cuisine.
func (e *Engine) Recommend(cuisine string, topN int) ([]search.Recommendation, error) {
	snap := e.current()
	if snap == nil {
		return nil, ErrNotReady
	}

	start := time.Now()
	results := snap.index.Recommend(cuisine, topN)
	metrics.RecordQuery(len(results), time.Since(start))

	e.Logger.WithFields(logrus.Fields{
		"cuisine": cuisine,
		"top_n":   topN,
		"results": len(results),
	}).Debug("Recommendation served")

	return results, nil
}

// Cuisines lists the cuisine words available for selection.
func (e *Engine) Cuisines() ([]string, error) {
	snap := e.current()
	if snap == nil {
		return nil, ErrNotReady
	}
	return append([]string(nil), snap.cuisines...), nil
}

func (e *Engine) IsReady() bool {
	return e.current() != nil
}

// Status reports readiness and the statistics of the last load.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Ready:       e.snapshot != nil,
		EngineStats: e.Stats,
	}
}

func (e *Engine) current() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Watch loads the engine again whenever the file at path is written or
// replaced. A burst of events collapses into one load once the file has
// been quiet for WatchDelay. It blocks until ctx is done.
func (e *Engine) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are seen too.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	log := e.Logger.WithField("path", target)
	log.Info("Watching dataset for changes")

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	// The content-keyed cache rebuilds only when the bytes actually changed.
	load := func() {
		if ctx.Err() != nil {
			return
		}
		log.Info("Dataset changed, reloading")
		if err := e.Load(ctx); err != nil {
			log.WithError(err).Warn("Reload failed, keeping previous index")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.WithField("op", event.Op.String()).Debug("Dataset event")
			if pending == nil {
				pending = time.AfterFunc(e.WatchDelay, load)
			} else {
				pending.Reset(e.WatchDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watcher error")
		}
	}
}
