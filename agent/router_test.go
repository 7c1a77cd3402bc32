package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockModel is a testify mock for model.Model.
type mockModel struct{ mock.Mock }

func (m *mockModel) Generate(ctx context.Context, req model.Request) (model.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Response), args.Error(1)
}

func (m *mockModel) Info() model.Info {
	return model.Info{Name: "mock", Provider: "mock", SupportsTools: true}
}

func routeTo(next string) model.Response {
	return model.Response{Calls: []core.ActionCall{{
		ID:        "r1",
		Name:      core.RouteActionName,
		Arguments: []byte(`{"next":"` + next + `"}`),
	}}}
}

func TestRouter_Decide(t *testing.T) {
	llm := &mockModel{}
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req model.Request) bool {
		return req.ToolChoice == core.RouteActionName && len(req.Tools) == 1
	})).Return(routeTo(ResearcherName), nil).Once()

	r, err := NewSupervisor(llm)
	require.NoError(t, err)

	state := seedState("add a red lamp")
	state = core.Merge(state, core.NewRouterMessage(core.Decision{Next: ResearcherName}))

	d, err := r.Decide(context.Background(), state.Transcript)
	require.NoError(t, err)
	assert.Equal(t, ResearcherName, d.Next)
	llm.AssertExpectations(t)

	req := llm.Calls[0].Arguments.Get(1).(model.Request)
	require.Len(t, req.Transcript, 1, "routing messages are not shown to the model")
	assert.Equal(t, core.AuthorUser, req.Transcript[0].Author)
}

func TestRouter_Finish(t *testing.T) {
	llm := model.NewScriptedModel("router").Enqueue(routeTo(core.Finish), nil)
	r, err := NewSupervisor(llm)
	require.NoError(t, err)

	d, err := r.Decide(context.Background(), seedState("q").Transcript)
	require.NoError(t, err)
	assert.True(t, d.IsFinish())
}

func TestRouter_Instruction(t *testing.T) {
	r, err := NewSupervisor(model.NewScriptedModel("router"))
	require.NoError(t, err)

	assert.Equal(t, []string{CartHandlerName, ResearcherName}, r.Members())
	assert.Equal(t, []string{core.Finish, CartHandlerName, ResearcherName}, r.Options())
	assert.Contains(t, r.Instruction(), "You are the supervisor of a shopping cart tool.")
	assert.Contains(t, r.Instruction(), "Select one of: FINISH, cart_handler, researcher")
}

func TestRouter_RouteToolSchema(t *testing.T) {
	llm := model.NewScriptedModel("router").Enqueue(routeTo(core.Finish), nil)
	r, err := NewRouter(llm, []string{"a", "b"})
	require.NoError(t, err)

	_, err = r.Decide(context.Background(), nil)
	require.NoError(t, err)

	def := llm.Requests()[0].Tools[0]
	assert.Equal(t, "route", def.Name)
	assert.Equal(t, "Select the next role.", def.Description)
	next := def.Parameters["properties"].(map[string]any)["next"].(map[string]any)
	assert.Equal(t, []any{"FINISH", "a", "b"}, next["enum"])
}

func TestRouter_InvalidDecisions(t *testing.T) {
	tests := []struct {
		name string
		resp model.Response
	}{
		{name: "unknown member", resp: routeTo("shopper")},
		{name: "no call", resp: model.Response{Text: "researcher"}},
		{name: "two calls", resp: model.Response{Calls: append(routeTo("researcher").Calls, routeTo("FINISH").Calls...)}},
		{name: "wrong action", resp: model.Response{Calls: []core.ActionCall{{Name: "add_tool", Arguments: []byte(`{"next":"researcher"}`)}}}},
		{name: "malformed json", resp: model.Response{Calls: []core.ActionCall{{Name: "route", Arguments: []byte(`{next`)}}}},
		{name: "missing next", resp: model.Response{Calls: []core.ActionCall{{Name: "route", Arguments: []byte(`{}`)}}}},
		{name: "wrong type", resp: model.Response{Calls: []core.ActionCall{{Name: "route", Arguments: []byte(`{"next":3}`)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := model.NewScriptedModel("router").Enqueue(tt.resp, nil)
			r, err := NewSupervisor(llm)
			require.NoError(t, err)

			_, err = r.Decide(context.Background(), seedState("q").Transcript)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrRoutingDecisionInvalid)

			var invalid *core.RoutingDecisionInvalidError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, []string{core.Finish, CartHandlerName, ResearcherName}, invalid.Allowed)
			assert.Len(t, llm.Requests(), 1, "invalid decisions are never retried")
		})
	}
}

func TestRouter_ModelFailure(t *testing.T) {
	llm := model.NewScriptedModel("router").Enqueue(model.Response{}, errors.New("unavailable"))
	r, err := NewSupervisor(llm)
	require.NoError(t, err)

	_, err = r.Decide(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrRoutingDecisionInvalid)
}

func TestNewRouter_Validation(t *testing.T) {
	llm := model.NewScriptedModel("router")

	for _, members := range [][]string{nil, {""}, {"FINISH"}, {"a", "a"}} {
		_, err := NewRouter(llm, members)
		assert.Error(t, err, "%v", members)
	}

	_, err := NewRouter(nil, []string{"a"})
	assert.Error(t, err)
}
