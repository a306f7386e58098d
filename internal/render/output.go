package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/joss/flashmart/internal/cart"
	"github.com/joss/flashmart/internal/catalog"
	"github.com/joss/flashmart/internal/checkout"
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer. Pretty mode uses color and styling; plain
// mode emits bare text for pipes and logs.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Products formats a product collection.
func (r *Renderer) Products(products []catalog.Product) string {
	if len(products) == 0 {
		return "No products found\n"
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(headerStyle.Render("Products") + "\n")
		sb.WriteString(strings.Repeat("─", 72) + "\n")
	}

	for _, p := range products {
		final := cart.PriceAfterDiscount(p.Price, p.Discount)
		line := fmt.Sprintf("%-12s %-28s %-12s %10s", p.ID, Truncate(p.Name, 28), p.Category, FormatPrice(final))
		if p.Discount > 0 {
			line += fmt.Sprintf("  -%d%%", p.Discount)
		}

		stock := fmt.Sprintf("  stock %d", p.Stock)
		if r.pretty {
			if p.Stock == 0 {
				stock = "  " + color.RedString("sold out")
			}
			line += dimStyle.Render(stock)
		} else {
			line += stock
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// Cart formats the cart lines with totals.
func (r *Renderer) Cart(items []cart.Item, totalItems int, totalPrice int64) string {
	if len(items) == 0 {
		return "Cart is empty\n"
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(headerStyle.Render("Cart") + "\n")
		sb.WriteString(strings.Repeat("─", 72) + "\n")
	}

	for _, it := range items {
		final := cart.PriceAfterDiscount(it.Price, it.Discount)
		sb.WriteString(fmt.Sprintf("%-12s %-28s x%-3d %12s", it.ProductID, Truncate(it.Name, 28), it.Qty, FormatPrice(final*int64(it.Qty))))
		if it.Discount > 0 {
			sb.WriteString(fmt.Sprintf("  (-%d%%)", it.Discount))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("─", 72) + "\n")
	total := fmt.Sprintf("%d item(s), total %s", totalItems, FormatPrice(totalPrice))
	if r.pretty {
		total = color.GreenString(total)
	}
	sb.WriteString(total + "\n")
	return sb.String()
}

// Orders formats the order history, newest first as the backend sends it.
func (r *Renderer) Orders(records []checkout.Record) string {
	if len(records) == 0 {
		return "No orders yet\n"
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(headerStyle.Render("Order History") + "\n")
		sb.WriteString(strings.Repeat("─", 72) + "\n")
	}

	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%-12s %-28s x%-3d %12s  %s\n",
			rec.ID, Truncate(rec.ProductName, 28), rec.Quantity, FormatPrice(rec.TotalPrice), rec.CreatedAt))
	}
	return sb.String()
}

// Journal formats locally recorded checkout submissions.
func (r *Renderer) Journal(entries []checkout.JournalEntry) string {
	if len(entries) == 0 {
		return "No pending submissions\n"
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(headerStyle.Render("Pending Submissions") + "\n")
		sb.WriteString(strings.Repeat("─", 72) + "\n")
	}

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-27s job %-12s %-12s x%-3d %s\n",
			e.ID, e.JobID, e.ProductID, e.Quantity, e.SubmittedAt.Format("2006-01-02 15:04:05")))
	}
	return sb.String()
}
