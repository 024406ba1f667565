package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatExpandedRoundTrip(t *testing.T) {
	cases := []Flat{
		{KeyID: "post-1", KeyType: "Post", "title": "hello"},
		{KeyID: "post-2", KeyType: "Post", KeyContext: "https://ex.org", "title": "x", "content": "body text"},
		{"title": "no id or type"},
	}

	for _, flat := range cases {
		expanded := ToExpanded(flat)
		got := ToFlat(expanded)
		assert.Equal(t, flat, got)
	}
}

func TestToExpandedLiftsContent(t *testing.T) {
	flat := Flat{KeyID: "a", KeyType: "Post", "content": "hello world"}
	expanded := ToExpanded(flat)

	assert.Equal(t, "a", expanded.ID)
	assert.Equal(t, "Post", expanded.Type)
	assert.NotNil(t, expanded.Content)
	assert.Equal(t, "hello world", *expanded.Content)
	assert.Equal(t, "hello world", expanded.Data["content"])
}

func TestToExpandedDataSupersetAfterToFlat(t *testing.T) {
	expanded := Expanded{ID: "a", Type: "Post", Data: map[string]any{"title": "hi"}}
	flat := ToFlat(expanded)
	roundTripped := ToExpanded(flat)

	for k, v := range expanded.Data {
		assert.Equal(t, v, roundTripped.Data[k])
	}
}

func TestRelationKeyString(t *testing.T) {
	k := RelationKey{FromType: "Customer", FromID: "c1", Relation: "address"}
	assert.Equal(t, "Customer:c1:address", k.String())
}

func TestEventMatchesPattern(t *testing.T) {
	postCreated := Event{Name: "Post.created"}
	authorCreated := Event{Name: "Author.created"}

	assert.True(t, postCreated.MatchesPattern("Post.*"))
	assert.False(t, authorCreated.MatchesPattern("Post.*"))

	assert.True(t, postCreated.MatchesPattern("*.created"))
	assert.True(t, authorCreated.MatchesPattern("*.created"))

	assert.True(t, postCreated.MatchesPattern("*"))
	assert.True(t, postCreated.MatchesPattern("Post.created"))
	assert.False(t, postCreated.MatchesPattern("Post.updated"))
}

func TestActionTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusActive))
	assert.True(t, CanTransition(StatusActive, StatusCompleted))
	assert.True(t, CanTransition(StatusActive, StatusFailed))
	assert.True(t, CanTransition(StatusFailed, StatusPending))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))

	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusActive))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
}
