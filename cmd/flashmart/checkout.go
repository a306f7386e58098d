// Package main checkout and order commands.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/render"
)

func checkoutCmd() *cobra.Command {
	var fromCart bool
	cmd := &cobra.Command{
		Use:   "checkout [product-id] [qty]",
		Short: "Submit a checkout",
		Long: `Submits a checkout for one product. The backend accepts the order
asynchronously (202) and processes the stock decrement out of band; the
job id is recorded locally and visible via 'flashmart orders pending'.

With --cart, every cart line is submitted and the cart is cleared after
all lines are accepted.`,
		Args: cobra.RangeArgs(0, 2),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("cart")
			ctx := context.Background()

			if fromCart {
				submitCart(ctx)
				return
			}

			if len(args) == 0 {
				fmt.Fprintln(os.Stderr, "Error: product id required (or use --cart)")
				os.Exit(1)
			}
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					fmt.Fprintf(os.Stderr, "Error: invalid quantity %q\n", args[1])
					os.Exit(1)
				}
				qty = n
			}

			accepted, err := app.Checkout.Submit(ctx, args[0], qty)
			if err != nil {
				exitOnError(err)
			}
			printAccepted(accepted.Message, accepted.JobID)
		},
	}
	cmd.Flags().BoolVar(&fromCart, "cart", false, "Submit every cart line")
	return cmd
}

func submitCart(ctx context.Context) {
	items := app.Cart.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty")
		return
	}

	for _, it := range items {
		accepted, err := app.Checkout.Submit(ctx, it.ProductID, it.Qty)
		if err != nil {
			// Already-submitted lines stay accepted; the failing line
			// stays in the cart for a retry.
			exitOnError(fmt.Errorf("%s: %w", it.Name, err))
		}
		printAccepted(fmt.Sprintf("%s x%d", it.Name, it.Qty), accepted.JobID)
		app.Cart.Remove(it.ProductID)
	}
}

func printAccepted(label, jobID string) {
	if pretty {
		fmt.Println(color.GreenString("Accepted: %s (job %s)", label, jobID))
		return
	}
	fmt.Printf("Accepted: %s (job %s)\n", label, jobID)
}

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order history",
	}

	// flashmart orders list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show order history, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("orders")

			records, err := app.Checkout.History(context.Background())
			if err != nil {
				exitOnError(err)
			}

			r := render.New(pretty)
			fmt.Print(r.Orders(records))
		},
	}

	// flashmart orders pending
	var clear bool
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "Show locally recorded submissions",
		Long:  "Shows accepted checkout jobs recorded on this machine, whose stock processing may still be in flight.",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("orders")
			ctx := context.Background()

			if clear {
				if err := app.Checkout.ClearJournal(ctx); err != nil {
					exitOnError(err)
				}
				fmt.Println("Journal cleared")
				return
			}

			r := render.New(pretty)
			fmt.Print(r.Journal(app.Checkout.Journal(ctx)))
		},
	}
	pendingCmd.Flags().BoolVar(&clear, "clear", false, "Drop the local journal")

	cmd.AddCommand(listCmd, pendingCmd)
	return cmd
}
