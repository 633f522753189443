package translator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"pdf-translator/internal/logger"
)

const (
	// DefaultMaxAttempts is the number of tries per unit, first attempt
	// included.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the delay before the first retry; it doubles
	// per attempt.
	DefaultBaseDelay = 2 * time.Second
	// DefaultMaxDelay caps the exponential backoff.
	DefaultMaxDelay = 30 * time.Second
	// DefaultGrace is how long in-flight calls may finish after the
	// run's deadline passes before being abandoned.
	DefaultGrace = 5 * time.Second
)

// Request is one unit of text to translate.
type Request struct {
	ID      string
	Text    string
	LangIn  string
	LangOut string
}

// Outcome is the terminal result for one request. Every request gets
// exactly one outcome; a failed request carries its source text so the
// document can still be rebuilt with the original wording in place.
type Outcome struct {
	Text      string
	FromCache bool
	Failed    bool
	Attempts  int
}

// Result summarizes a dispatch run.
type Result struct {
	JobID      string
	Outcomes   map[string]Outcome
	Translated int
	CacheHits  int
	Fallbacks  int
}

// Options tunes a dispatch run. Zero values select the defaults.
type Options struct {
	Concurrency int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Grace       time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Grace <= 0 {
		o.Grace = DefaultGrace
	}
	return o
}

// ProgressFunc receives (completed, total) after each request reaches a
// terminal state. Calls are serialized and completed never decreases;
// the final call is always (total, total).
type ProgressFunc func(completed, total int)

// Run translates all requests through the backend, serving repeats from
// the cache. Identical texts dispatched concurrently produce a single
// backend call. Transient failures retry with exponential backoff;
// permanent failures and exhausted retries fall back to the source text
// so a run always produces a full outcome set. When ctx carries a
// deadline, requests still pending after the deadline plus a grace
// window are resolved as fallbacks and late results are discarded.
func Run(ctx context.Context, reqs []Request, backend Backend, cache *Cache, opts Options, onProgress ProgressFunc) *Result {
	opts = opts.withDefaults()

	result := &Result{
		JobID:    uuid.New().String(),
		Outcomes: make(map[string]Outcome, len(reqs)),
	}

	total := len(reqs)
	if total == 0 {
		if onProgress != nil {
			onProgress(0, 0)
		}
		return result
	}

	logger.Info("dispatch started",
		logger.String("job", result.JobID),
		logger.Int("requests", total),
		logger.Int("concurrency", opts.Concurrency))

	var mu sync.Mutex
	completed := 0
	finalized := false

	// settle records the terminal outcome for one request. The first
	// terminal state wins; anything after finalization or a prior
	// terminal is dropped.
	settle := func(id string, out Outcome) {
		mu.Lock()
		defer mu.Unlock()
		if finalized {
			return
		}
		if _, done := result.Outcomes[id]; done {
			return
		}
		result.Outcomes[id] = out
		switch {
		case out.Failed:
			result.Fallbacks++
		case out.FromCache:
			result.CacheHits++
		default:
			result.Translated++
		}
		completed++
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	// Serve warm entries first so cached documents finish without
	// touching the backend at all.
	var misses []Request
	for _, req := range reqs {
		key := Key(req.Text, req.LangIn, req.LangOut, backend.ModelID())
		if translation, ok := cache.Get(key); ok {
			settle(req.ID, Outcome{Text: translation, FromCache: true})
			continue
		}
		misses = append(misses, req)
	}

	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	var wg sync.WaitGroup

	for _, req := range misses {
		req := req
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				settle(req.ID, Outcome{Text: req.Text, Failed: true})
				return
			}
			defer sem.Release(1)

			key := Key(req.Text, req.LangIn, req.LangOut, backend.ModelID())
			attempts := 0
			translation, err := cache.Resolve(key, func() (string, error) {
				text, n, err := translateWithRetry(ctx, backend, req, opts)
				attempts = n
				return text, err
			})
			if err != nil {
				settle(req.ID, Outcome{Text: req.Text, Failed: true, Attempts: attempts})
				return
			}
			settle(req.ID, Outcome{Text: translation, Attempts: attempts})
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Give in-flight calls a bounded window to land, then resolve
		// whatever is left as fallbacks.
		select {
		case <-done:
		case <-time.After(opts.Grace):
			logger.Warn("dispatch deadline reached, falling back to source text",
				logger.String("job", result.JobID))
		}
	}

	mu.Lock()
	pending := make([]Request, 0)
	for _, req := range reqs {
		if _, ok := result.Outcomes[req.ID]; !ok {
			pending = append(pending, req)
		}
	}
	mu.Unlock()

	for _, req := range pending {
		settle(req.ID, Outcome{Text: req.Text, Failed: true})
	}

	mu.Lock()
	finalized = true
	mu.Unlock()

	logger.Info("dispatch finished",
		logger.String("job", result.JobID),
		logger.Int("translated", result.Translated),
		logger.Int("cache_hits", result.CacheHits),
		logger.Int("fallbacks", result.Fallbacks))

	return result
}

// translateWithRetry drives one request through the backend, retrying
// transient failures with exponential backoff until the attempt budget
// or the context runs out.
func translateWithRetry(ctx context.Context, backend Backend, req Request, opts Options) (string, int, error) {
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt - 1, err
		}

		translated, err := backend.Translate(ctx, req.Text, req.LangIn, req.LangOut)
		if err == nil {
			return translated, attempt, nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.Warn("permanent backend failure",
				logger.String("request", req.ID),
				logger.Err(err))
			return "", attempt, err
		}

		if attempt < opts.MaxAttempts {
			delay := backoffDelay(opts.BaseDelay, opts.MaxDelay, attempt)
			logger.Debug("retrying after transient failure",
				logger.String("request", req.ID),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", attempt, ctx.Err()
			}
		}
	}

	return "", opts.MaxAttempts, lastErr
}

// backoffDelay returns base doubled per completed attempt, capped at max.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
