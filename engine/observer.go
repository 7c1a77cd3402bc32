package engine

import "github.com/PaulCrtr/cart-ai/core"

// Phase identifies the state machine phase a StepEvent was emitted from.
type Phase string

const (
	PhaseRouting     Phase = "ROUTING"
	PhaseDispatching Phase = "DISPATCHING"
)

// StepEvent describes one committed step.
type StepEvent struct {
	RequestID string
	Step      int          // 1-based step counter after the step
	Phase     Phase        // phase that produced Message
	Actor     string       // router author or worker name
	Message   core.Message // the merged contribution
}

// Observer receives step events synchronously, in step order. Observers must
// not block for long; the request waits for them.
type Observer interface {
	OnStep(ev StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev StepEvent)

// OnStep implements Observer.
func (f ObserverFunc) OnStep(ev StepEvent) { f(ev) }

// Observers fans an event out to every observer in registration order.
type Observers []Observer

// OnStep implements Observer.
func (o Observers) OnStep(ev StepEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.OnStep(ev)
		}
	}
}
