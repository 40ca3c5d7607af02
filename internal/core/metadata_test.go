package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTagSet(t *testing.T) {
	a := NewTagSet("bob", "alice", "bob")
	b := NewTagSet("alice", "bob")

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Has("bob"))
	assert.False(t, a.Has("carol"))
	assert.True(t, a.Equal(b))
	assert.Equal(t, []string{"alice", "bob"}, a.Sorted())
	assert.False(t, a.Equal(NewTagSet("alice")))
	assert.Equal(t, 0, NewTagSet().Len())
}

func TestMetadataCheckpoint(t *testing.T) {
	assert.False(t, Metadata{}.CheckpointEnabled())

	on, off := true, false
	assert.True(t, Metadata{Checkpoint: &on}.CheckpointEnabled())
	assert.False(t, Metadata{Checkpoint: &off}.CheckpointEnabled())
}
