package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartai "github.com/PaulCrtr/cart-ai"
	"github.com/PaulCrtr/cart-ai/agent"
	"github.com/PaulCrtr/cart-ai/config"
	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/engine"
	"github.com/PaulCrtr/cart-ai/internal/testutil"
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/search"
)

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cartPath := filepath.Join(dir, "cart.json")
	cfgPath := filepath.Join(dir, "cartai.yaml")
	body := "cart:\n  backend: file\n  path: " + cartPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath, cartPath
}

func TestCartCommands(t *testing.T) {
	cfgPath, cartPath := writeConfig(t)

	out := execute(t, "--config", cfgPath, "cart", "list")
	assert.Equal(t, "[]\n", out)

	out = execute(t, "--config", cfgPath, "cart", "add", "PyTorch Tutorial", "https://pytorch.org/tutorials")
	assert.Contains(t, out, "added PyTorch Tutorial (id 1)")

	out = execute(t, "--config", cfgPath, "cart", "list")
	assert.Contains(t, out, `"name": "PyTorch Tutorial"`)

	out = execute(t, "--config", cfgPath, "cart", "remove", "7")
	assert.Contains(t, out, "no product with id 7")

	out = execute(t, "--config", cfgPath, "cart", "remove", "1")
	assert.Contains(t, out, "removed PyTorch Tutorial (1)")

	data, err := os.ReadFile(cartPath)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestAsk_PrintsStepsAndAnswer(t *testing.T) {
	routerLLM := model.NewScriptedModel("router").
		Enqueue(testutil.RouteTo(agent.ResearcherName), nil).
		Enqueue(testutil.RouteTo(core.Finish), nil)
	workerLLM := model.NewScriptedModel("worker").
		Enqueue(testutil.Final("Try the official PyTorch tutorials.\nThey are free."), nil)

	var out bytes.Buffer
	cfg := config.Default()
	cfg.Cart.Backend = config.BackendMemory
	app, err := cartai.New(func(o *cartai.Options) {
		o.Config = cfg
		o.Model = workerLLM
		o.RouterModel = routerLLM
		o.Searcher = search.SearcherFunc(func(context.Context, string, int) ([]search.Result, error) { return nil, nil })
		o.Observer = stepPrinter(&out)
	})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, ask(context.Background(), app, "find a pytorch tutorial", &out))

	assert.Equal(t, "[01] supervisor -> researcher\n"+
		"[02] researcher\n"+
		"     Try the official PyTorch tutorials.\n"+
		"     They are free.\n"+
		"[03] supervisor -> FINISH\n"+
		"Try the official PyTorch tutorials.\nThey are free.\n", out.String())
}

func TestAsk_HardFailureReturnsError(t *testing.T) {
	routerLLM := model.NewScriptedModel("router").
		Enqueue(model.Response{}, assert.AnError)

	cfg := config.Default()
	cfg.Cart.Backend = config.BackendMemory
	app, err := cartai.New(func(o *cartai.Options) {
		o.Config = cfg
		o.Model = model.NewScriptedModel("worker")
		o.RouterModel = routerLLM
		o.Searcher = search.SearcherFunc(func(context.Context, string, int) ([]search.Result, error) { return nil, nil })
	})
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	err = ask(context.Background(), app, "anything", &out)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestStatusNote(t *testing.T) {
	assert.Equal(t, "BUDGET_EXCEEDED", statusNote(engine.Result{Status: core.StatusBudgetExceeded}))
	assert.Equal(t, "CANCELLED: "+assert.AnError.Error(), statusNote(engine.Result{Status: core.StatusCancelled, Err: assert.AnError}))
}
