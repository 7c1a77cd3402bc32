package model

import (
	"context"
	"fmt"
	"sync"
)

// ResponderFunc computes a response from the request; used by ScriptedModel
// once its queued responses are exhausted.
type ResponderFunc func(req Request) (Response, error)

// ScriptedModel is a deterministic in‑memory Model for tests and offline runs.
// It replays queued responses in order, then falls back to Responder. Every
// request is recorded.
type ScriptedModel struct {
	mu        sync.Mutex
	info      Info
	queue     []scripted
	requests  []Request
	Responder ResponderFunc

	// Gate, when set, blocks Generate until a value is received or ctx is done.
	Gate chan struct{}
	// Started, when set, is signalled (non-blocking) as Generate begins.
	Started chan struct{}
}

type scripted struct {
	resp Response
	err  error
}

// NewScriptedModel constructs a ScriptedModel with tool support enabled.
func NewScriptedModel(name string) *ScriptedModel {
	return &ScriptedModel{info: Info{Name: name, Provider: "scripted", SupportsTools: true}}
}

// Reply queues a final text answer.
func (m *ScriptedModel) Reply(text string) *ScriptedModel {
	return m.Enqueue(Response{Text: text, FinishReason: "stop"}, nil)
}

// Enqueue queues a response or error.
func (m *ScriptedModel) Enqueue(resp Response, err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, scripted{resp: resp, err: err})
	return m
}

// Requests returns a copy of all recorded requests.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate, started := m.Gate, m.Started
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-gate:
		}
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return next.resp, next.err
	}
	responder := m.Responder
	m.mu.Unlock()

	if responder != nil {
		return responder(req)
	}
	return Response{}, fmt.Errorf("scripted model %s: no response queued", m.info.Name)
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }
