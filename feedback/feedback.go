// Package feedback notifies the calibration collaborator about accepted
// parse and modification results. Notification is fire-and-forget: the core
// never waits on, or fails because of, the feedback path.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/archsketch/archsketch/spec"
)

// Subjects for feedback events.
const (
	SubjectParse  = "archsketch.feedback.parse"
	SubjectModify = "archsketch.feedback.modify"
)

// Event is one accepted result reported for later learning.
type Event struct {
	// Source names the resolution path: "template", "component",
	// "fallback", "incremental" or "llm-modify".
	Source string `json:"source"`

	// Prompt is the user's natural-language input.
	Prompt string `json:"prompt"`

	// Spec is the accepted result.
	Spec *spec.Spec `json:"spec"`

	// TemplateUsed is set when a template resolved the prompt.
	TemplateUsed string `json:"template_used,omitempty"`

	// Confidence is the discrete confidence band of the result.
	Confidence float64 `json:"confidence,omitempty"`

	// At is when the result was accepted.
	At time.Time `json:"at"`
}

// Notifier is the calibration hook. Implementations must be cheap and must
// never block the caller on downstream processing.
type Notifier interface {
	// ParseAccepted reports a successful parse.
	ParseAccepted(ctx context.Context, ev Event) error

	// ModifyApplied reports a successfully applied modification.
	ModifyApplied(ctx context.Context, ev Event) error
}

// NATSNotifier publishes feedback events as JSON over NATS.
type NATSNotifier struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewNATSNotifier creates a notifier on an existing connection. A nil
// connection is allowed and degrades to a no-op, matching how optional
// collaborators are wired elsewhere.
func NewNATSNotifier(nc *nats.Conn, logger *slog.Logger) *NATSNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSNotifier{nc: nc, logger: logger}
}

// ParseAccepted implements Notifier.
func (n *NATSNotifier) ParseAccepted(ctx context.Context, ev Event) error {
	return n.publish(ctx, SubjectParse, ev)
}

// ModifyApplied implements Notifier.
func (n *NATSNotifier) ModifyApplied(ctx context.Context, ev Event) error {
	return n.publish(ctx, SubjectModify, ev)
}

func (n *NATSNotifier) publish(_ context.Context, subject string, ev Event) error {
	if n.nc == nil {
		return nil // Skip publishing without a NATS connection (graceful degradation)
	}

	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}

	if err := n.nc.Publish(subject, data); err != nil {
		n.logger.Warn("feedback publish failed", "subject", subject, "error", err)
		return fmt.Errorf("publish feedback event: %w", err)
	}

	return nil
}

// Nop is a Notifier that does nothing. It is the default for sessions
// constructed without a feedback collaborator.
type Nop struct{}

// ParseAccepted implements Notifier.
func (Nop) ParseAccepted(context.Context, Event) error { return nil }

// ModifyApplied implements Notifier.
func (Nop) ModifyApplied(context.Context, Event) error { return nil }
