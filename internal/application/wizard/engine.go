package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"regatta/internal/adapters/storage/kv"
	practiceStore "regatta/internal/adapters/storage/practice"
	eventDomain "regatta/internal/domain/event"
	wiz "regatta/internal/domain/wizard"
)

// Storage keys owned by the engine. Step field data lives under stepKeyPrefix
// plus the step name; the current step index and active team key get their
// own single keys. Per-team practice data is owned by the practice store and
// is never touched through raw keys here.
const (
	stepIndexKey  = "wizard/step"
	activeTeamKey = "wizard/team"
	stepKeyPrefix = "step/"
)

// DefaultMinPracticeHours is required per team before the practice step can
// complete.
const DefaultMinPracticeHours = 12

// DefaultStaleAge is how old a session entry must be before quota pruning
// may discard it.
const DefaultStaleAge = 24 * time.Hour

// EventStore is the event lookup the engine needs for intro validation.
type EventStore interface {
	GetByID(ctx context.Context, id string) (eventDomain.Event, error)
}

// Deps holds dependencies for the Engine.
type Deps struct {
	KV       kv.Store
	Events   EventStore
	Practice func(sessionID string) practiceStore.Store
	// Durable outlives the session scope's stale pruning; the submitted
	// marker lives there so duplicate protection survives. Falls back to
	// KV when nil.
	Durable kv.Store

	MinPracticeHours int
	StaleAge         time.Duration
	Now              func() time.Time
}

// Engine drives the ordered, validated step sequence for every registration
// session. All mutations for one session are serialized by a per-session
// lock, so a read-modify-write cycle can never interleave with another
// handler for the same session.
type Engine struct {
	deps Deps

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a wizard engine.
// PRE: deps.KV, deps.Events and deps.Practice are non-nil
func NewEngine(deps Deps) *Engine {
	if deps.MinPracticeHours <= 0 {
		deps.MinPracticeHours = DefaultMinPracticeHours
	}
	if deps.StaleAge <= 0 {
		deps.StaleAge = DefaultStaleAge
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Durable == nil {
		deps.Durable = deps.KV
	}
	return &Engine{deps: deps, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex serializing one session's mutations.
func (e *Engine) lockFor(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[sessionID] = l
	}
	return l
}

// NextResult carries the outcome of a forward transition.
type NextResult struct {
	Step       wiz.Step
	Validation wiz.Result
	// Warning is set when persistence degraded (storage quota) but
	// navigation proceeded anyway.
	Warning string
}

// CurrentStep returns the session's step index, falling back to intro when
// nothing is stored or the stored value is unusable.
func (e *Engine) CurrentStep(ctx context.Context, sessionID string) (wiz.Step, error) {
	raw, found, err := e.deps.KV.Get(ctx, sessionID, stepIndexKey)
	if err != nil {
		return wiz.StepIntro, err
	}
	if !found {
		return wiz.StepIntro, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return wiz.StepIntro, nil
	}
	return wiz.Clamp(n), nil
}

// Resume lands the session on an externally supplied index (deep link or
// reload): the lesser of the requested step and the persisted one, so a
// forged index can never skip ahead of validated progress. Out-of-range
// indexes fall back to the first step.
// POST: the stored step index equals the returned step
func (e *Engine) Resume(ctx context.Context, sessionID string, requested int) (wiz.Step, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := e.CurrentStep(ctx, sessionID)
	if err != nil {
		return wiz.StepIntro, err
	}
	step := wiz.Clamp(requested)
	if step > current {
		step = current
	}
	if err := e.deps.KV.Set(ctx, sessionID, stepIndexKey, strconv.Itoa(int(step))); err != nil && !errors.Is(err, kv.ErrQuotaExceeded) {
		return wiz.StepIntro, err
	}
	return step, nil
}

// StepData returns the persisted field map for a step, for re-rendering a
// revisited or reloaded step. Absent or unparsable data comes back empty.
func (e *Engine) StepData(ctx context.Context, sessionID string, step wiz.Step) (wiz.FormData, error) {
	raw, found, err := e.deps.KV.Get(ctx, sessionID, stepKeyPrefix+step.Name())
	if err != nil {
		return wiz.FormData{}, err
	}
	if !found {
		return wiz.FormData{}, nil
	}
	var data wiz.FormData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("step_data_unparsable", "step", step.Name(), "error", err.Error())
		return wiz.FormData{}, nil
	}
	return data, nil
}

// Next validates the current step against the submitted form, persists its
// fields, and advances. Validation failures leave the step unchanged and
// carry the full violation list; they are never Go errors.
// POST: on validation success the stored index is current+1
func (e *Engine) Next(ctx context.Context, sessionID string, form wiz.FormData) (NextResult, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := e.CurrentStep(ctx, sessionID)
	if err != nil {
		return NextResult{}, err
	}
	if current == wiz.StepSummary {
		return NextResult{Step: current}, fmt.Errorf("already at final step")
	}

	res := e.validateStep(ctx, sessionID, current, form)
	if !res.OK() {
		return NextResult{Step: current, Validation: res}, nil
	}

	warning, err := e.persistStep(ctx, sessionID, current, form)
	if err != nil {
		return NextResult{}, err
	}

	next := current + 1
	if w, err := e.setWithRetry(ctx, sessionID, stepIndexKey, strconv.Itoa(int(next))); err != nil {
		return NextResult{}, err
	} else if warning == "" {
		warning = w
	}
	return NextResult{Step: next, Warning: warning}, nil
}

// Back moves to an earlier step, invalidating all persisted data belonging
// to every step strictly after the target so no stale data can resurface.
// PRE: target < current step
// POST: step data for every step > target is removed; stored index = target
func (e *Engine) Back(ctx context.Context, sessionID string, target wiz.Step) (wiz.Step, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if !target.Valid() {
		target = wiz.StepIntro
	}
	current, err := e.CurrentStep(ctx, sessionID)
	if err != nil {
		return current, err
	}
	if target >= current {
		// Forward jumps go through Next; same-step is a no-op.
		return current, nil
	}

	for s := target + 1; s < wiz.StepCount; s++ {
		if err := e.clearStep(ctx, sessionID, s); err != nil {
			return current, err
		}
	}
	if err := e.deps.KV.Set(ctx, sessionID, stepIndexKey, strconv.Itoa(int(target))); err != nil && !errors.Is(err, kv.ErrQuotaExceeded) {
		return current, err
	}
	return target, nil
}

// clearStep removes a step's persisted data, including the practice
// collections and active-team marker when the practice step is invalidated.
func (e *Engine) clearStep(ctx context.Context, sessionID string, step wiz.Step) error {
	if err := e.deps.KV.Remove(ctx, sessionID, stepKeyPrefix+step.Name()); err != nil {
		return err
	}
	if step == wiz.StepPractice {
		if err := e.deps.Practice(sessionID).RemoveAll(ctx); err != nil {
			return err
		}
		if err := e.deps.KV.Remove(ctx, sessionID, activeTeamKey); err != nil {
			return err
		}
	}
	return nil
}

// ActiveTeam returns the team key whose practice data is being edited,
// defaulting to the first team.
func (e *Engine) ActiveTeam(ctx context.Context, sessionID string) (string, error) {
	raw, found, err := e.deps.KV.Get(ctx, sessionID, activeTeamKey)
	if err != nil {
		return "", err
	}
	if !found || raw == "" {
		return "t1", nil
	}
	return raw, nil
}

// SetActiveTeam records the team key being edited. The calendar for the new
// team is rebuilt from its stored rows, never carried over.
// PRE: teamKey belongs to the session's team set
func (e *Engine) SetActiveTeam(ctx context.Context, sessionID, teamKey string) error {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return e.deps.KV.Set(ctx, sessionID, activeTeamKey, teamKey)
}

// PracticeStore returns the session-bound practice store, for callers that
// need the aggregate reads the engine itself uses.
func (e *Engine) PracticeStore(sessionID string) practiceStore.Store {
	return e.deps.Practice(sessionID)
}

// ConfirmSummary validates the final step's form and persists it. Submission
// is refused until this has recorded the consent checkbox; violations come
// back the same way Next reports them.
// POST: on success ConsentGiven reports true for this session
func (e *Engine) ConfirmSummary(ctx context.Context, sessionID string, form wiz.FormData) (NextResult, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	res := validateSummary(form)
	if !res.OK() {
		return NextResult{Step: wiz.StepSummary, Validation: res}, nil
	}
	warning, err := e.persistStep(ctx, sessionID, wiz.StepSummary, form)
	if err != nil {
		return NextResult{}, err
	}
	return NextResult{Step: wiz.StepSummary, Warning: warning}, nil
}

// ConsentGiven reports whether the session's persisted summary step carries
// an affirmative consent value.
func (e *Engine) ConsentGiven(ctx context.Context, sessionID string) (bool, error) {
	data, err := e.StepData(ctx, sessionID, wiz.StepSummary)
	if err != nil {
		return false, err
	}
	return consentAffirmed(data.Get(FieldConsent)), nil
}

// submittedKey records the submission ID once the flow completes.
const submittedKey = "wizard/submitted"

// MarkSubmitted records that the session's registration was submitted. The
// marker goes into the durable scope so duplicate-submission protection is
// not lost when stale session state is pruned.
// POST: SubmittedID returns the given id for this session
func (e *Engine) MarkSubmitted(ctx context.Context, sessionID, submissionID string) error {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return e.deps.Durable.Set(ctx, sessionID, submittedKey, submissionID)
}

// SubmittedID returns the session's submission ID, or "" when the flow has
// not been completed.
func (e *Engine) SubmittedID(ctx context.Context, sessionID string) (string, error) {
	raw, found, err := e.deps.Durable.Get(ctx, sessionID, submittedKey)
	if err != nil || !found {
		return "", err
	}
	return raw, nil
}

// setWithRetry writes a key; on quota failure it prunes stale session
// entries and retries exactly once. A second quota failure degrades to a
// warning so navigation is never blocked by storage pressure.
func (e *Engine) setWithRetry(ctx context.Context, sessionID, key, value string) (string, error) {
	err := e.deps.KV.Set(ctx, sessionID, key, value)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		return "", err
	}

	cutoff := e.deps.Now().Add(-e.deps.StaleAge)
	if _, pruneErr := e.deps.KV.PruneStale(ctx, cutoff); pruneErr != nil {
		slog.Warn("kv_prune_failed", "error", pruneErr.Error())
	}
	if err := e.deps.KV.Set(ctx, sessionID, key, value); err != nil {
		if errors.Is(err, kv.ErrQuotaExceeded) {
			slog.Warn("step_persist_degraded", "key", key)
			return "Some answers could not be saved; they will be re-checked before submission.", nil
		}
		return "", err
	}
	return "", nil
}
