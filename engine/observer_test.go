package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservers_FanOutInOrder(t *testing.T) {
	var got []string
	obs := Observers{
		ObserverFunc(func(ev StepEvent) { got = append(got, "a:"+ev.Actor) }),
		nil,
		ObserverFunc(func(ev StepEvent) { got = append(got, "b:"+ev.Actor) }),
	}

	obs.OnStep(StepEvent{Actor: "researcher"})

	assert.Equal(t, []string{"a:researcher", "b:researcher"}, got)
}
