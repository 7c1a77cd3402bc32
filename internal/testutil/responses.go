package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/model"
)

// RouteTo is the response of a router model selecting next.
func RouteTo(next string) model.Response {
	return model.Response{
		Calls:        []core.ActionCall{Call(core.RouteActionName, map[string]string{"next": next})},
		FinishReason: "tool_calls",
	}
}

// Call builds an action call with JSON encoded args. It panics on values
// encoding/json cannot marshal.
func Call(name string, args any) core.ActionCall {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal %s args: %v", name, err))
	}
	return core.ActionCall{ID: "call_" + core.NewID()[:8], Name: name, Arguments: raw}
}

// Calls is a response requesting the given calls.
func Calls(calls ...core.ActionCall) model.Response {
	return model.Response{Calls: calls, FinishReason: "tool_calls"}
}

// Final is a final text answer.
func Final(text string) model.Response {
	return model.Response{Text: text, FinishReason: "stop"}
}
