// Package session coordinates one editing session: it owns the current spec
// and the conversation context, sequences local parses and remote LLM
// modifications, and guarantees that results become visible in submission
// order, never completion order.
//
// The fencing model: every submission takes the next value of a monotonic
// request counter and cancels whatever was in flight. Before any result may
// touch shared state, its counter value is compared against the latest one;
// a stale result is discarded silently. Shared state is re-read under the
// session lock at that point rather than through values captured before the
// remote call, so a long-lived continuation can never act on a stale
// snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/archsketch/archsketch/diff"
	"github.com/archsketch/archsketch/feedback"
	"github.com/archsketch/archsketch/llm"
	"github.com/archsketch/archsketch/metrics"
	"github.com/archsketch/archsketch/parser"
	"github.com/archsketch/archsketch/spec"
	"github.com/archsketch/archsketch/store"
)

// ErrSuperseded reports that a newer submission arrived while this one was
// in flight. Callers treat it as a silent no-op, not a user-facing error.
var ErrSuperseded = errors.New("request superseded by a newer submission")

// ErrNoCurrentSpec reports a modification attempt before any spec exists.
var ErrNoCurrentSpec = errors.New("no current spec to modify")

// RemoteModifier is the remote LLM collaborator boundary. *llm.Modifier is
// the production implementation.
type RemoteModifier interface {
	ProposeChanges(ctx context.Context, req llm.ModifyRequest) (*spec.ModifyResult, error)
}

// Session is the single logical writer for one editing session. All
// exported methods are safe for concurrent use; internally the accepted
// spec and conversation context form one mutex-guarded cell.
type Session struct {
	parser   *parser.Parser
	remote   RemoteModifier
	notifier feedback.Notifier
	logger   *slog.Logger

	mu             sync.Mutex
	convo          parser.Context
	current        *spec.Spec
	lastRequestID  uint64
	cancelInFlight context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithRemote sets the LLM modification collaborator. Without one, Modify
// returns a structured failure.
func WithRemote(remote RemoteModifier) Option {
	return func(s *Session) {
		s.remote = remote
	}
}

// WithNotifier sets the feedback collaborator.
func WithNotifier(n feedback.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHistoryLimit bounds the conversation history.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.convo.Limit = n
	}
}

// WithInitialSpec seeds the session with an already-accepted spec, e.g. one
// rehydrated by the persistence collaborator.
func WithInitialSpec(sp *spec.Spec) Option {
	return func(s *Session) {
		s.current = sp
		s.convo = s.convo.WithSpec(sp)
	}
}

// New creates a session around a parser. The session starts with no current
// spec; the first successful parse establishes one.
func New(p *parser.Parser, opts ...Option) *Session {
	s := &Session{
		parser:   p,
		notifier: feedback.Nop{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin registers a new submission: it claims the next request id and
// cancels any in-flight remote call, which a newer submission supersedes.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRequestID++
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.cancelInFlight = nil
	}
	return s.lastRequestID
}

// isLatest reports whether the request id is still the newest submission.
// Callers must hold s.mu.
func (s *Session) isLatest(id uint64) bool {
	return id == s.lastRequestID
}

// Parse resolves a prompt locally and, if this submission is still the
// latest, commits the result as the session's current state. The returned
// result is always the parse outcome for this prompt even when a newer
// submission fenced it off; only the shared state update is skipped.
func (s *Session) Parse(prompt string) spec.ParseResult {
	id := s.begin()

	s.mu.Lock()
	convo := s.convo
	s.mu.Unlock()

	result := s.parser.Parse(prompt, convo)

	s.mu.Lock()
	if !s.isLatest(id) {
		s.mu.Unlock()
		metrics.SupersededTotal.Inc()
		return result
	}
	s.convo = s.convo.WithEntry(prompt, result)
	if result.Success && result.Spec != nil {
		s.current = result.Spec
	}
	s.mu.Unlock()

	metrics.ParsesTotal.WithLabelValues(parseOutcome(result), parseSource(result)).Inc()

	if result.Success && result.Spec != nil {
		s.notify(func(ctx context.Context) error {
			return s.notifier.ParseAccepted(ctx, feedback.Event{
				Source:       parseSource(result),
				Prompt:       prompt,
				Spec:         result.Spec,
				TemplateUsed: result.TemplateUsed,
				Confidence:   result.Confidence,
				At:           time.Now(),
			})
		})
	}

	return result
}

// Modify sends the prompt and the current spec to the remote LLM
// collaborator, applies the proposed diff atomically, and commits the new
// spec, unless a newer submission supersedes this one first, in which case
// it returns ErrSuperseded and changes nothing.
//
// Remote failures come back as a structured ModifyResult with Success=false
// (and the model's reasoning when there is one), not as an error; the only
// error returns are supersession and a missing current spec.
func (s *Session) Modify(ctx context.Context, prompt string) (*spec.ModifyResult, error) {
	if s.remote == nil {
		return &spec.ModifyResult{Success: false, Error: "no modification collaborator configured"}, nil
	}

	id := s.begin()

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoCurrentSpec
	}
	base := s.current
	callCtx, cancel := context.WithCancel(ctx)
	s.cancelInFlight = cancel
	s.mu.Unlock()
	defer cancel()

	result, err := s.remote.ProposeChanges(callCtx, llm.ModifyRequest{
		Prompt:  prompt,
		Current: base,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isLatest(id) {
		// A newer submission owns the state now; this result must not be
		// applied regardless of how the call ended.
		metrics.SupersededTotal.Inc()
		return nil, ErrSuperseded
	}
	if s.cancelInFlight != nil {
		s.cancelInFlight = nil
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			metrics.SupersededTotal.Inc()
			return nil, ErrSuperseded
		}
		metrics.ModificationsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("modification call failed", "error", err)
		return &spec.ModifyResult{Success: false, Error: err.Error()}, nil
	}
	if !result.Success {
		metrics.ModificationsTotal.WithLabelValues("rejected").Inc()
		return result, nil
	}

	// Apply against the cell, not the captured base. With fencing intact
	// they are the same value; reading the cell keeps that a checked fact
	// rather than an assumption.
	next, err := diff.Apply(s.current, result.Operations)
	if err != nil {
		metrics.ModificationsTotal.WithLabelValues("rejected").Inc()
		return &spec.ModifyResult{
			Success:    false,
			Reasoning:  result.Reasoning,
			Operations: result.Operations,
			Error:      fmt.Sprintf("proposed diff is invalid: %v", err),
		}, nil
	}

	s.current = next
	s.convo = s.convo.WithSpec(next)
	result.Spec = next

	metrics.ModificationsTotal.WithLabelValues("applied").Inc()

	s.notify(func(ctx context.Context) error {
		return s.notifier.ModifyApplied(ctx, feedback.Event{
			Source: "llm-modify",
			Prompt: prompt,
			Spec:   next,
			At:     time.Now(),
		})
	})

	return result, nil
}

// Current returns the accepted spec, or nil before the first parse.
func (s *Session) Current() *spec.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Context returns a snapshot of the conversation context.
func (s *Session) Context() parser.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convo
}

// Snapshot persists the current spec under the given name.
func (s *Session) Snapshot(ctx context.Context, st store.SpecStore, name string) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return ErrNoCurrentSpec
	}
	return st.Save(ctx, name, current)
}

// Restore rehydrates the session's current spec from a stored snapshot.
// Restoration counts as a submission: it supersedes any in-flight request.
func (s *Session) Restore(ctx context.Context, st store.SpecStore, name string) error {
	loaded, err := st.Load(ctx, name)
	if err != nil {
		return err
	}

	id := s.begin()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isLatest(id) {
		return ErrSuperseded
	}
	s.current = loaded
	s.convo = s.convo.WithSpec(loaded)
	return nil
}

// notify runs a feedback call without letting it fail or delay the session.
func (s *Session) notify(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		s.logger.Debug("feedback notification failed", "error", err)
	}
}

func parseOutcome(r spec.ParseResult) string {
	if r.Success {
		return "success"
	}
	return "invalid"
}

func parseSource(r spec.ParseResult) string {
	switch {
	case !r.Success:
		return "none"
	case r.CommandType == spec.CommandIncrementalEdit:
		return "incremental"
	case r.TemplateUsed != "":
		return "template"
	case r.Confidence == spec.ConfidenceFallback:
		return "fallback"
	default:
		return "component"
	}
}
