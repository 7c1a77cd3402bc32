package core

import "slices"

// Finish is the sentinel routing target that ends a request.
const Finish = "FINISH"

// RouteActionName is the pseudo-action the router is forced to call.
const RouteActionName = "route"

// Decision is the router's sole output: the next worker or Finish.
type Decision struct {
	Next string `json:"next"`
}

// IsFinish reports whether the decision terminates the request.
func (d Decision) IsFinish() bool { return d.Next == Finish }

// Options returns the closed enumeration of valid decisions for the given
// members: Finish followed by the members in registration order.
func Options(members []string) []string {
	return append([]string{Finish}, members...)
}

// ValidFor reports whether the decision is a member of Options(members).
func (d Decision) ValidFor(members []string) bool {
	return d.IsFinish() || slices.Contains(members, d.Next)
}
