package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedModel_QueueThenResponder(t *testing.T) {
	m := NewScriptedModel("mock").Reply("first")
	m.Responder = func(req Request) (Response, error) {
		return Response{Text: "echo " + req.Instructions}, nil
	}

	r1, err := m.Generate(context.Background(), Request{Instructions: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first", r1.Text)
	assert.True(t, r1.IsFinal())

	r2, err := m.Generate(context.Background(), Request{Instructions: "b"})
	require.NoError(t, err)
	assert.Equal(t, "echo b", r2.Text)

	assert.Len(t, m.Requests(), 2)
	assert.Equal(t, "scripted", m.Info().Provider)
}

func TestScriptedModel_EmptyFails(t *testing.T) {
	_, err := NewScriptedModel("mock").Generate(context.Background(), Request{})
	assert.Error(t, err)
}

func TestScriptedModel_QueuedError(t *testing.T) {
	boom := errors.New("boom")
	m := NewScriptedModel("mock").Enqueue(Response{}, boom)

	_, err := m.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestScriptedModel_GateHonoursCancellation(t *testing.T) {
	m := NewScriptedModel("mock").Reply("never")
	m.Gate = make(chan struct{})
	m.Started = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Generate(ctx, Request{})
		done <- err
	}()

	<-m.Started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not return after cancellation")
	}
}

func TestResponse_Tokens(t *testing.T) {
	assert.Equal(t, 0, Response{}.Tokens())
	r := Response{Calls: []core.ActionCall{{Name: "x"}}, Usage: &TokenUsage{TotalTokens: 7}}
	assert.Equal(t, 7, r.Tokens())
	assert.False(t, r.IsFinal())
}
