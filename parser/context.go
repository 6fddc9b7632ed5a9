package parser

import "github.com/archsketch/archsketch/spec"

// DefaultHistoryLimit bounds how many prompt/result pairs a conversation
// context retains.
const DefaultHistoryLimit = 10

// Entry is one prior prompt and the result it produced.
type Entry struct {
	Prompt string
	Result spec.ParseResult
}

// Context is the accumulated conversation state for one editing session.
// It is a value type updated copy-on-write: every update returns a new
// Context and never mutates the receiver, so a caller holding an older
// value always sees a consistent snapshot.
type Context struct {
	// CurrentSpec is the caller's accepted spec, nil before the first
	// successful parse. When non-nil the orchestrator interprets edit
	// phrasing against it instead of generating from scratch.
	CurrentSpec *spec.Spec

	// History holds up to Limit prior entries, oldest first.
	History []Entry

	// Limit is the history bound; zero means DefaultHistoryLimit.
	Limit int
}

// limit returns the effective history bound.
func (c Context) limit() int {
	if c.Limit > 0 {
		return c.Limit
	}
	return DefaultHistoryLimit
}

// WithEntry returns a new context with the prompt/result pair appended and
// the history trimmed to the bound. If the result carried a spec, it becomes
// the new CurrentSpec.
func (c Context) WithEntry(prompt string, result spec.ParseResult) Context {
	history := make([]Entry, 0, len(c.History)+1)
	history = append(history, c.History...)
	history = append(history, Entry{Prompt: prompt, Result: result})
	if n := c.limit(); len(history) > n {
		history = history[len(history)-n:]
	}

	next := Context{CurrentSpec: c.CurrentSpec, History: history, Limit: c.Limit}
	if result.Success && result.Spec != nil {
		next.CurrentSpec = result.Spec
	}
	return next
}

// WithSpec returns a new context whose CurrentSpec is replaced, leaving the
// history untouched. Used when a spec arrives from outside the parse path
// (LLM modification, persistence rehydration).
func (c Context) WithSpec(s *spec.Spec) Context {
	return Context{CurrentSpec: s, History: c.History, Limit: c.Limit}
}

// LastPrompt returns the most recent prompt, or "" for a fresh context.
func (c Context) LastPrompt() string {
	if len(c.History) == 0 {
		return ""
	}
	return c.History[len(c.History)-1].Prompt
}
