package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Majid-Chaudhary/oltp-sample/internal/generator"
	"github.com/Majid-Chaudhary/oltp-sample/internal/seeder"
	"github.com/Majid-Chaudhary/oltp-sample/internal/settings"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateGenerating State = "generating"
	StateSleeping   State = "sleeping"
	StateStopped    State = "stopped"
)

const (
	ReasonSettings  = "continuous_loading disabled"
	ReasonCancelled = "cancelled"
	ReasonCompleted = "completed"
)

type Loader interface {
	SeedOrLoad(ctx context.Context, mode seeder.Mode) (types.ReferenceSet, error)
}

type Generator interface {
	Generate(ctx context.Context, refs types.ReferenceSet, n int) generator.Stats
}

type Summary struct {
	RunID   string
	Batches int
	Stats   generator.Stats
	Reason  string
	Elapsed time.Duration
}

// Runner drives the generator in batches, re-reading settings between
// batches until continuous_loading is switched off or ctx is cancelled.
type Runner struct {
	settings  settings.Provider
	loader    Loader
	generator Generator
	log       logrus.FieldLogger
	runID     string
	state     State

	// sleep waits for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a runner. An empty runID gets a fresh uuid.
func New(provider settings.Provider, loader Loader, gen Generator, log logrus.FieldLogger, runID string) *Runner {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Runner{
		settings:  provider,
		loader:    loader,
		generator: gen,
		log:       log.WithField("run_id", runID),
		runID:     runID,
		state:     StateIdle,
		sleep:     sleepContext,
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) State() State {
	return r.state
}

func (r *Runner) setState(s State) {
	if r.state != s {
		r.log.WithFields(logrus.Fields{"from": string(r.state), "to": string(s)}).Debug("state change")
	}
	r.state = s
}

// Run reads settings, loads reference data and loops while
// continuous_loading is set. Errors before the loop starts are returned,
// errors inside it are logged.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: r.runID}

	current, err := r.settings.Fetch(ctx)
	if err != nil {
		r.setState(StateStopped)
		return summary, fmt.Errorf("failed to read settings: %w", err)
	}
	r.log.WithFields(settingsFields(current)).Info("settings loaded")

	refs, err := r.load(ctx, current.FirstLoad)
	if err != nil {
		r.setState(StateStopped)
		return summary, err
	}

	for current.ContinuousLoading {
		if ctx.Err() != nil {
			return r.stop(summary, ReasonCancelled, started), nil
		}

		r.setState(StateGenerating)
		if current.BatchSize < 1 {
			r.log.WithField("batch_size", current.BatchSize).Warn("batch_size is not positive, nothing to generate")
		}
		stats := r.generator.Generate(ctx, refs, current.BatchSize)
		summary.Stats.Add(stats)
		summary.Batches++
		r.log.WithFields(logrus.Fields{
			"batch":     summary.Batches,
			"committed": stats.Committed,
			"failed":    stats.Failed,
			"orphaned":  stats.Orphaned,
		}).Info("batch finished")

		r.setState(StateSleeping)
		if err := r.sleep(ctx, current.Pause()); err != nil {
			return r.stop(summary, ReasonCancelled, started), nil
		}

		next, err := r.settings.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return r.stop(summary, ReasonCancelled, started), nil
			}
			r.log.WithError(err).Warn("failed to refresh settings, keeping previous values")
			continue
		}
		if next != current {
			r.log.WithFields(settingsFields(next)).Info("settings changed")
		}
		current = next
	}

	return r.stop(summary, ReasonSettings, started), nil
}

// RunOnce loads reference data and generates count order groups without
// consulting continuous_loading.
func (r *Runner) RunOnce(ctx context.Context, firstLoad bool, count int) (Summary, error) {
	started := time.Now()
	summary := Summary{RunID: r.runID}

	refs, err := r.load(ctx, firstLoad)
	if err != nil {
		r.setState(StateStopped)
		return summary, err
	}

	r.setState(StateGenerating)
	summary.Stats = r.generator.Generate(ctx, refs, count)
	summary.Batches = 1

	reason := ReasonCompleted
	if ctx.Err() != nil {
		reason = ReasonCancelled
	}
	return r.stop(summary, reason, started), nil
}

func (r *Runner) load(ctx context.Context, firstLoad bool) (types.ReferenceSet, error) {
	r.setState(StateLoading)

	mode := seeder.ModeLookup
	if firstLoad {
		mode = seeder.ModeFirstLoad
	}
	refs, err := r.loader.SeedOrLoad(ctx, mode)
	if err != nil {
		return types.ReferenceSet{}, fmt.Errorf("failed to load reference data: %w", err)
	}
	if missing := refs.Missing(); len(missing) > 0 {
		return types.ReferenceSet{}, fmt.Errorf("%w: %s", generator.ErrNoReferenceData, strings.Join(missing, ", "))
	}
	return refs, nil
}

func (r *Runner) stop(summary Summary, reason string, started time.Time) Summary {
	r.setState(StateStopped)
	summary.Reason = reason
	summary.Elapsed = time.Since(started)
	r.log.WithFields(logrus.Fields{
		"reason":    reason,
		"batches":   summary.Batches,
		"attempted": summary.Stats.Attempted,
		"committed": summary.Stats.Committed,
		"failed":    summary.Stats.Failed,
	}).Info("run stopped")
	return summary
}

func settingsFields(s settings.Settings) logrus.Fields {
	return logrus.Fields{
		"first_load":         s.FirstLoad,
		"continuous_loading": s.ContinuousLoading,
		"batch_size":         s.BatchSize,
		"pause_seconds":      s.PauseSeconds,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
