package anthropic

import (
	"testing"

	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages_AlternatesRoles(t *testing.T) {
	req := model.Request{
		Transcript: []core.Message{
			core.NewUserMessage("remove the tree"),
			core.NewRouterMessage(core.Decision{Next: "cart_handler"}),
			core.NewWorkerMessage("researcher", "nothing found"),
		},
		Scratch: []model.Exchange{
			{
				Calls:   []core.ActionCall{{ID: "t1", Name: "read_tool", Arguments: []byte(`{}`)}},
				Results: []core.ActionResult{{CallID: "t1", Name: "read_tool", Output: `[{"id":"1","name":"tree","url":"u"}]`}},
			},
			{
				Calls:   []core.ActionCall{{ID: "t2", Name: "remove_tool", Arguments: []byte(`{"product":{"id":"1"}}`)}},
				Results: []core.ActionResult{{CallID: "t2", Name: "remove_tool", Output: "Product removed: 1"}},
			},
		},
	}

	msgs := buildMessages(req)
	// user(text,text) assistant(tool_use) user(tool_result) assistant(tool_use) user(tool_result)
	require.Len(t, msgs, 5)
	roles := make([]string, len(msgs))
	for i, m := range msgs {
		roles[i] = string(m.Role)
	}
	assert.Equal(t, []string{"user", "assistant", "user", "assistant", "user"}, roles)
	assert.Len(t, msgs[0].Content, 2)
}

func TestBuildTools_RequiredAndDescription(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Name:        "route",
		Description: "Select the next role.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"next": map[string]any{"type": "string", "enum": []any{"FINISH", "researcher"}}},
			"required":   []any{"next"},
		},
	}})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "route", tools[0].OfTool.Name)
	assert.Equal(t, []string{"next"}, tools[0].OfTool.InputSchema.Required)
	assert.Equal(t, "Select the next role.", tools[0].OfTool.Description.Value)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	info := m.Info()
	assert.Equal(t, "anthropic", info.Provider)
	assert.True(t, info.SupportsTools)
}
