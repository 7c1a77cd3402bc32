package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cartai "github.com/PaulCrtr/cart-ai"
	"github.com/PaulCrtr/cart-ai/cart"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or edit the cart without the assistant",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the cart as JSON",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, store cart.Store, _ []string) error {
		products, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cart.Render(products))
		return nil
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a product",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(cmd *cobra.Command, store cart.Store, args []string) error {
		p, err := store.Add(cmd.Context(), cart.NewProduct{Name: args[0], URL: args[1]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s added %s (id %s)\n", color.GreenString("✓"), p.Name, p.ID)
		return nil
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a product by id",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, store cart.Store, args []string) error {
		removed, err := store.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if removed == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s no product with id %s\n", color.YellowString("!"), args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s (%s)\n", color.GreenString("✓"), removed.Name, removed.ID)
		return nil
	}),
}

func init() {
	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
}

func withStore(fn func(cmd *cobra.Command, store cart.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closer, err := cartai.OpenStore(cfg.Cart)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		return fn(cmd, store, args)
	}
}
