package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNATSNotifierDegradesWithoutConnection(t *testing.T) {
	n := NewNATSNotifier(nil, nil)

	assert.NoError(t, n.ParseAccepted(context.Background(), Event{Prompt: "p"}))
	assert.NoError(t, n.ModifyApplied(context.Background(), Event{Prompt: "p"}))
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.ParseAccepted(context.Background(), Event{}))
	assert.NoError(t, n.ModifyApplied(context.Background(), Event{}))
}
