package core

import "encoding/json"

// State is the conversation record threaded through one request. It is a
// value: every step produces a new State through Merge and the engine is its
// only owner.
//
// Contract:
//   - Transcript is append-only; insertion order is causal order
//   - NextHop is empty until the first routing step, then a worker name or Finish
//   - The last message always has a non-empty Author
type State struct {
	Transcript []Message `json:"transcript"`
	NextHop    string    `json:"next_hop,omitempty"`
}

// NewState seeds a state with the caller's request.
func NewState(seed Message) State {
	return State{Transcript: []Message{seed}}
}

// Len returns the transcript length.
func (s State) Len() int { return len(s.Transcript) }

// Last returns the most recent message and false when the transcript is empty.
func (s State) Last() (Message, bool) {
	if len(s.Transcript) == 0 {
		return Message{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// LastContribution returns the most recent non-routing message; this is the
// request's answer when the loop stops.
func (s State) LastContribution() (Message, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if !s.Transcript[i].IsRouting() {
			return s.Transcript[i], true
		}
	}
	return Message{}, false
}

// Conversation returns the transcript without routing messages, which carry
// control flow only.
func (s State) Conversation() []Message {
	out := make([]Message, 0, len(s.Transcript))
	for _, m := range s.Transcript {
		if !m.IsRouting() {
			out = append(out, m)
		}
	}
	return out
}

// Merge is the reducer: it appends contribution to the transcript and, for a
// router contribution, overwrites NextHop with the carried decision. It is a
// pure function; the input state's backing array is never written.
func Merge(state State, contribution Message) State {
	transcript := make([]Message, len(state.Transcript), len(state.Transcript)+1)
	copy(transcript, state.Transcript)
	next := State{
		Transcript: append(transcript, contribution),
		NextHop:    state.NextHop,
	}
	if contribution.IsRouting() {
		next.NextHop = decisionOf(contribution).Next
	}
	return next
}

// decisionOf extracts the routing decision carried by a router message,
// preferring the structured route call over the content mirror.
func decisionOf(m Message) Decision {
	for _, c := range m.Calls {
		if c.Name != RouteActionName {
			continue
		}
		var d Decision
		if err := json.Unmarshal(c.Arguments, &d); err == nil && d.Next != "" {
			return d
		}
	}
	return Decision{Next: m.Content}
}
