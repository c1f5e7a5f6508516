package models

import "time"

// Transaction is one immutable entry of the token history shown to the farmer.
// Balance is the token balance right after Amount was applied.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"` // negative for purchases
	Balance     int64     `json:"balance"`
}

// PurchaseItem holds the marketplace item selected for confirmation.
type PurchaseItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CatalogItem is a marketplace product.
type CatalogItem struct {
	Name     string `json:"name" yaml:"name"`
	Price    int64  `json:"price" yaml:"price"`
	Category string `json:"category" yaml:"category"`
}

func (c CatalogItem) PurchaseItem() PurchaseItem {
	return PurchaseItem{Name: c.Name, Price: c.Price}
}
