package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithContextMergesAndChildWins(t *testing.T) {
	base := WithContext(context.Background(), Frame{Priority: "standard", Actor: "alice"})
	child := WithContext(base, Frame{Priority: "priority"})

	baseFrame := FrameFromContext(base)
	require.Equal(t, "standard", baseFrame.Priority)
	require.Equal(t, "alice", baseFrame.Actor)

	childFrame := FrameFromContext(child)
	require.Equal(t, "priority", childFrame.Priority)
	require.Equal(t, "alice", childFrame.Actor, "child inherits unset fields from parent")
}

func TestWithContextDoesNotLeakIntoParent(t *testing.T) {
	base := WithContext(context.Background(), Frame{Priority: "flex"})
	_ = WithContext(base, Frame{Priority: "batch", BatchWindow: time.Minute})

	require.Equal(t, "flex", FrameFromContext(base).Priority, "pushing a child frame must not mutate the parent's")
}

func TestRunWithContextScopesToCall(t *testing.T) {
	ctx := context.Background()
	var seen string
	err := RunWithContext(ctx, Frame{Priority: "priority"}, func(inner context.Context) error {
		seen = FrameFromContext(inner).Priority
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "priority", seen)
	require.Equal(t, "", FrameFromContext(ctx).Priority, "the outer context is unaffected")
}
