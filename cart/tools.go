package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PaulCrtr/cart-ai/logging"
	"github.com/PaulCrtr/cart-ai/tool"
)

// Action names exposed to the cart worker.
const (
	ReadToolName   = "read_tool"
	AddToolName    = "add_tool"
	RemoveToolName = "remove_tool"
)

// ToolOptions configures the cart actions.
type ToolOptions struct {
	// MaxAddsPerTurn refuses further adds within one worker turn once
	// reached. Zero means unlimited.
	MaxAddsPerTurn int
	Logger         logging.Logger
}

type addArgs struct {
	Product NewProduct `json:"product" description:"The product to add to the cart"`
}

type removeArgs struct {
	Product struct {
		ID string `json:"id" description:"Id of the product to remove"`
	} `json:"product"`
}

// Tools returns the read, add and remove actions over store.
func Tools(store Store, optFns ...func(o *ToolOptions)) ([]tool.Tool, error) {
	opts := ToolOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.With(logging.OrNoOp(opts.Logger), "component", "cart")

	read, err := tool.NewFunctionTool(ReadToolName,
		"Read the shopping cart. Use it only when the request is to display the cart.",
		nil,
		func(ctx context.Context, _ map[string]any) (string, error) {
			products, err := store.List(ctx)
			if err != nil {
				return "", err
			}
			return Render(products), nil
		})
	if err != nil {
		return nil, err
	}

	add, err := tool.NewFunctionToolFromStruct(AddToolName,
		"Add a product to the shopping cart. The product must include a name and a url.",
		addArgs{},
		func(ctx context.Context, args map[string]any) (string, error) {
			var in addArgs
			if err := decodeArgs(args, &in); err != nil {
				return "", tool.NewToolError(AddToolName, err.Error(), tool.CodeBadInput)
			}

			if opts.MaxAddsPerTurn > 0 && tool.CountInTurn(ctx, AddToolName) > opts.MaxAddsPerTurn {
				logger.Warn("cart.add.refused", "name", in.Product.Name, "limit", opts.MaxAddsPerTurn)
				return fmt.Sprintf("Product not added: %s. At most %d item(s) may be added per request.", in.Product.Name, opts.MaxAddsPerTurn), nil
			}

			added, err := store.Add(ctx, in.Product)
			if err != nil {
				return "", err
			}
			logger.Info("cart.product.added", "id", added.ID, "name", added.Name)

			return summarize(ctx, store, fmt.Sprintf("Product added: %s. Cart updated: ", added.Name))
		})
	if err != nil {
		return nil, err
	}

	remove, err := tool.NewFunctionToolFromStruct(RemoveToolName,
		"Remove a product from the shopping cart by id.",
		removeArgs{},
		func(ctx context.Context, args map[string]any) (string, error) {
			var in removeArgs
			if err := decodeArgs(args, &in); err != nil {
				return "", tool.NewToolError(RemoveToolName, err.Error(), tool.CodeBadInput)
			}

			removed, err := store.Remove(ctx, in.Product.ID)
			if err != nil {
				return "", err
			}
			if removed == nil {
				return summarize(ctx, store, fmt.Sprintf("No product with id %s. Cart unchanged: ", in.Product.ID))
			}
			logger.Info("cart.product.removed", "id", removed.ID, "name", removed.Name)

			return summarize(ctx, store, fmt.Sprintf("Product removed: %s. Cart updated: ", removed.ID))
		})
	if err != nil {
		return nil, err
	}

	return []tool.Tool{read, add, remove}, nil
}

func summarize(ctx context.Context, store Store, prefix string) (string, error) {
	products, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	return prefix + Render(products), nil
}

func decodeArgs(args map[string]any, v any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
