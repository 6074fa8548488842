package agent

import (
	"fmt"
	"strings"
	"time"
)

const noProductsText = "📦 No products found matching the criteria."

const noUpdateFieldsText = "⚠️ No fields provided for update. Please specify at least one field to update."

const timeLayout = "2006-01-02 15:04:05 MST"

func renderCreated(p Product) string {
	return fmt.Sprintf("✅ Product created successfully!\n\nID: %s\nName: %s\nSKU: %s\nPrice: $%s\nStock: %d",
		p.ID, p.Name, p.Sku, p.Price.String(), p.StockQuantity)
}

func renderList(page ProductPage) string {
	if len(page.Products) == 0 {
		return noProductsText
	}

	items := make([]string, len(page.Products))
	for i, p := range page.Products {
		items[i] = fmt.Sprintf("• **%s** (%s)\n  Price: $%s | Stock: %d\n  %s",
			p.Name, p.Sku, p.Price.String(), p.StockQuantity, p.Description)
	}

	pg := page.Pagination
	return fmt.Sprintf("📦 **Products Found:**\n\n%s\n\n📊 **Pagination**: %d-%d of %d products",
		strings.Join(items, "\n\n"), pg.Offset+1, min(pg.Offset+pg.Limit, pg.Total), pg.Total)
}

func renderDetails(p Product) string {
	return fmt.Sprintf("📦 **Product Details:**\n\n**ID:** %s\n**Name:** %s\n**SKU:** %s\n**Description:** %s\n"+
		"**Price:** $%s\n**Stock:** %d\n**Created:** %s\n**Updated:** %s",
		p.ID, p.Name, p.Sku, p.Description, p.Price.String(), p.StockQuantity,
		p.CreatedAt.In(time.Local).Format(timeLayout), p.UpdatedAt.In(time.Local).Format(timeLayout))
}

func renderUpdated(p Product) string {
	return fmt.Sprintf("✅ Product updated successfully!\n\n**Updated Product:**\n**ID:** %s\n**Name:** %s\n"+
		"**SKU:** %s\n**Price:** $%s\n**Stock:** %d\n**Description:** %s",
		p.ID, p.Name, p.Sku, p.Price.String(), p.StockQuantity, p.Description)
}

func renderDeleted(id string) string {
	return fmt.Sprintf("✅ Product with ID %s has been deleted successfully.", id)
}

func renderStockAdjusted(p Product, quantity int) string {
	action := "removed from"
	if quantity > 0 {
		action = "added to"
	}
	return fmt.Sprintf("✅ Stock updated successfully!\n\n%d units %s inventory.\n\n**Updated Product:**\n"+
		"**Name:** %s\n**SKU:** %s\n**Current Stock:** %d",
		abs(quantity), action, p.Name, p.Sku, p.StockQuantity)
}

func renderError(verb string, err error) string {
	return fmt.Sprintf("❌ Error %s: %s", verb, err.Error())
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
