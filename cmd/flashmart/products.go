// Package main product catalog commands.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/catalog"
	"github.com/joss/flashmart/internal/render"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage products",
	}

	// flashmart products all
	var query, category string
	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Browse the marketplace",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("home")
			ctx := context.Background()

			app.Catalog.FetchAll(ctx)
			if msg := app.Catalog.AllErr(); msg != "" {
				app.Catalog.ClearAllErr()
				exitOnError(fmt.Errorf("%s", msg))
			}

			products := app.Catalog.FilterAll(query, category)
			r := render.New(pretty)
			fmt.Print(r.Products(products))

			if cats := app.Catalog.AllCategories(); len(cats) > 0 {
				fmt.Printf("\nCategories: %s\n", strings.Join(cats, ", "))
			}
		},
	}
	allCmd.Flags().StringVarP(&query, "search", "s", "", "Filter by name")
	allCmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")

	// flashmart products list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show your own products (seller)",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("seller")
			ctx := context.Background()

			app.Catalog.FetchOwned(ctx)
			if msg := app.Catalog.OwnedErr(); msg != "" {
				app.Catalog.ClearOwnedErr()
				exitOnError(fmt.Errorf("%s", msg))
			}

			r := render.New(pretty)
			fmt.Print(r.Products(app.Catalog.Owned()))
		},
	}

	// flashmart products get <id>
	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("seller")

			p, err := app.Catalog.GetByID(context.Background(), args[0])
			if err != nil {
				exitOnError(err)
			}

			w := render.Stdout()
			w.Println("%s", p.Name)
			w.Item("ID:        %s", p.ID)
			w.Item("Category:  %s", p.Category)
			w.Item("Price:     %s", render.FormatPrice(p.Price))
			w.Item("Discount:  %d%%", p.Discount)
			w.Item("Stock:     %d", p.Stock)
		},
	}

	// flashmart products create
	var name, cat string
	var stock, discount int
	var price int64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("seller")

			user := app.Session.CurrentUser()
			if user == nil {
				fmt.Fprintln(os.Stderr, "Please sign in first: flashmart login")
				os.Exit(1)
			}

			p, err := app.Catalog.Create(context.Background(), catalog.CreateRequest{
				Name:      name,
				Category:  cat,
				Stock:     stock,
				Price:     price,
				Discount:  discount,
				CreatedBy: user.ID,
			})
			if err != nil {
				exitOnError(err)
			}
			fmt.Printf("Created %s (%s)\n", p.Name, p.ID)
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Product name")
	createCmd.Flags().StringVarP(&cat, "category", "c", "", "Category")
	createCmd.Flags().IntVar(&stock, "stock", 0, "Initial stock")
	createCmd.Flags().Int64Var(&price, "price", 0, "Price in rupiah")
	createCmd.Flags().IntVar(&discount, "discount", 0, "Discount percent 0-100")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("category")
	createCmd.MarkFlagRequired("price")

	// flashmart products update <id>
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a product (only supplied fields change)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("seller")
			ctx := context.Background()

			// The owned snapshot supplies the unchanged fields
			app.Catalog.FetchOwned(ctx)

			var patch catalog.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("category") {
				patch.Category = &cat
			}
			if cmd.Flags().Changed("stock") {
				patch.Stock = &stock
			}
			if cmd.Flags().Changed("price") {
				patch.Price = &price
			}
			if cmd.Flags().Changed("discount") {
				patch.Discount = &discount
			}

			p, err := app.Catalog.Update(ctx, args[0], patch)
			if err != nil {
				exitOnError(err)
			}
			fmt.Printf("Updated %s (%s)\n", p.Name, p.ID)
		},
	}
	updateCmd.Flags().StringVarP(&name, "name", "n", "", "Product name")
	updateCmd.Flags().StringVarP(&cat, "category", "c", "", "Category")
	updateCmd.Flags().IntVar(&stock, "stock", 0, "Stock")
	updateCmd.Flags().Int64Var(&price, "price", 0, "Price in rupiah")
	updateCmd.Flags().IntVar(&discount, "discount", 0, "Discount percent 0-100")

	// flashmart products delete <id>
	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("seller")

			if err := app.Catalog.Delete(context.Background(), args[0]); err != nil {
				exitOnError(err)
			}
			fmt.Printf("Deleted %s\n", args[0])
		},
	}

	cmd.AddCommand(allCmd, listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}
