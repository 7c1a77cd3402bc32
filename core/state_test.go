package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	seed := NewUserMessage("add a red kettle")
	s := NewState(seed)

	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.NextHop)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, AuthorUser, last.Author)
	assert.Equal(t, RoleUser, last.Role)
}

func TestMerge_WorkerContributionKeepsNextHop(t *testing.T) {
	s := NewState(NewUserMessage("hi"))
	s = Merge(s, NewRouterMessage(Decision{Next: "researcher"}))
	require.Equal(t, "researcher", s.NextHop)

	s2 := Merge(s, NewWorkerMessage("researcher", "found it"))

	assert.Equal(t, 3, s2.Len())
	assert.Equal(t, "researcher", s2.NextHop)
	last, _ := s2.Last()
	assert.Equal(t, "found it", last.Content)
}

func TestMerge_RouterContributionOverwritesNextHop(t *testing.T) {
	s := NewState(NewUserMessage("hi"))
	s = Merge(s, NewRouterMessage(Decision{Next: "researcher"}))
	s = Merge(s, NewWorkerMessage("researcher", "found it"))
	s = Merge(s, NewRouterMessage(Decision{Next: Finish}))

	assert.Equal(t, Finish, s.NextHop)
	assert.Equal(t, 4, s.Len())
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	base := NewState(NewUserMessage("hi"))
	// Give the base transcript spare capacity so a naive append would share it.
	base.Transcript = append(make([]Message, 0, 8), base.Transcript...)

	a := Merge(base, NewWorkerMessage("a", "from a"))
	b := Merge(base, NewWorkerMessage("b", "from b"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "from a", a.Transcript[1].Content)
	assert.Equal(t, "from b", b.Transcript[1].Content)
}

func TestMerge_RouterContentFallback(t *testing.T) {
	m := Message{ID: NewID(), Author: AuthorRouter, Role: RoleRouter, Content: "cart_handler"}
	s := Merge(NewState(NewUserMessage("hi")), m)

	assert.Equal(t, "cart_handler", s.NextHop)
}

func TestState_LastContributionSkipsRouting(t *testing.T) {
	s := NewState(NewUserMessage("hi"))
	s = Merge(s, NewRouterMessage(Decision{Next: "cart_handler"}))
	s = Merge(s, NewWorkerMessage("cart_handler", "cart is empty"))
	s = Merge(s, NewRouterMessage(Decision{Next: Finish}))

	last, ok := s.LastContribution()
	require.True(t, ok)
	assert.Equal(t, "cart is empty", last.Content)

	conv := s.Conversation()
	require.Len(t, conv, 2)
	assert.Equal(t, RoleUser, conv[0].Role)
	assert.Equal(t, RoleWorker, conv[1].Role)
}

func TestDecision_ValidFor(t *testing.T) {
	members := []string{"cart_handler", "researcher"}

	assert.True(t, Decision{Next: Finish}.ValidFor(members))
	assert.True(t, Decision{Next: "researcher"}.ValidFor(members))
	assert.False(t, Decision{Next: "shopper"}.ValidFor(members))
	assert.False(t, Decision{Next: ""}.ValidFor(members))
	assert.Equal(t, []string{Finish, "cart_handler", "researcher"}, Options(members))
}
