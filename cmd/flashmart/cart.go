// Package main cart commands.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/render"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	// flashmart cart add <product-id> [qty]
	addCmd := &cobra.Command{
		Use:   "add [product-id] [qty]",
		Short: "Add a product to the cart",
		Long:  "Adds the product, capped at its current stock. Quantity defaults to 1.",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")
			ctx := context.Background()

			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					fmt.Fprintf(os.Stderr, "Error: invalid quantity %q\n", args[1])
					os.Exit(1)
				}
				qty = n
			}

			// The marketplace snapshot is the stock authority at add time
			app.Catalog.FetchAll(ctx)
			if msg := app.Catalog.AllErr(); msg != "" {
				app.Catalog.ClearAllErr()
				exitOnError(fmt.Errorf("%s", msg))
			}

			product, ok := app.Catalog.GetAll(args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: product %s not found\n", args[0])
				os.Exit(1)
			}

			before := app.Cart.TotalItems()
			app.Cart.Add(product, qty)
			added := app.Cart.TotalItems() - before
			if added == 0 {
				fmt.Printf("%s is at stock capacity, nothing added\n", product.Name)
				return
			}
			fmt.Printf("Added %d x %s\n", added, product.Name)
		},
	}

	// flashmart cart set <product-id> <qty>
	setCmd := &cobra.Command{
		Use:   "set [product-id] [qty]",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")

			qty, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid quantity %q\n", args[1])
				os.Exit(1)
			}

			app.Cart.SetQty(args[0], qty)
			showCart()
		},
	}

	// flashmart cart remove <product-id>
	removeCmd := &cobra.Command{
		Use:   "remove [product-id]",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")
			app.Cart.Remove(args[0])
			showCart()
		},
	}

	// flashmart cart clear
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")
			app.Cart.Clear()
			fmt.Println("Cart cleared")
		},
	}

	// flashmart cart show
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")
			showCart()
		},
	}

	cmd.AddCommand(addCmd, setCmd, removeCmd, clearCmd, showCmd)
	return cmd
}

func showCart() {
	r := render.New(pretty)
	fmt.Print(r.Cart(app.Cart.Items(), app.Cart.TotalItems(), app.Cart.TotalPrice()))
}
