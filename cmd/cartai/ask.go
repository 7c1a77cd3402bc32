package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cartai "github.com/PaulCrtr/cart-ai"
	"github.com/PaulCrtr/cart-ai/core"
	"github.com/PaulCrtr/cart-ai/engine"
)

var askQuiet bool

var askCmd = &cobra.Command{
	Use:   "ask <request...>",
	Short: "Answer one request and print every step",
	Example: `  cartai ask "Find a PyTorch tutorial and add it to my cart"
  cartai ask --quiet "What is in my cart?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askQuiet, "quiet", "q", false, "print only the final answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	app, _, err := buildApp(func(o *cartai.Options) {
		if !askQuiet {
			o.Observer = stepPrinter(out)
		}
	})
	if err != nil {
		return err
	}
	defer app.Close()

	return ask(ctx, app, strings.Join(args, " "), out)
}

func ask(ctx context.Context, app *cartai.CartAI, query string, out io.Writer) error {
	res, err := app.Run(ctx, query)
	if !res.Answered() {
		return err
	}
	if res.Status != core.StatusDone {
		fmt.Fprintf(out, "%s %s\n", color.YellowString("!"), statusNote(res))
	}
	fmt.Fprintln(out, res.Answer)
	return nil
}

func statusNote(res engine.Result) string {
	if res.Err != nil {
		return fmt.Sprintf("%s: %v", res.Status, res.Err)
	}
	return string(res.Status)
}

// stepPrinter renders each committed step on one or more terminal lines.
func stepPrinter(out io.Writer) engine.Observer {
	routeColor := color.New(color.FgCyan)
	workerColor := color.New(color.FgGreen, color.Bold)
	return engine.ObserverFunc(func(ev engine.StepEvent) {
		step := color.New(color.Faint).Sprintf("[%02d]", ev.Step)
		switch ev.Phase {
		case engine.PhaseRouting:
			fmt.Fprintf(out, "%s %s -> %s\n", step, routeColor.Sprint(ev.Actor), ev.Message.Content)
		default:
			fmt.Fprintf(out, "%s %s\n%s\n", step, workerColor.Sprint(ev.Actor), indent(ev.Message.Content))
		}
	})
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "     " + l
	}
	return strings.Join(lines, "\n")
}
