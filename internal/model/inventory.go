package model

import "time"

// InventoryItem is one stocked shoe variant.  The (Name, Model, Size)
// triple is unique and StockLevel never drops below zero.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – product name, e.g. "Sneaker X".
//  Model      – model code.
//  Size       – size label; kept as text ("10", "42", "9.5").
//  StockLevel – units on hand.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type InventoryItem struct {
	ID         uint64    `json:"id"`         // inventory_items.id
	Name       string    `json:"name"`       // inventory_items.name
	Model      string    `json:"model"`      // inventory_items.model
	Size       string    `json:"size"`       // inventory_items.size
	StockLevel int       `json:"stockLevel"` // inventory_items.stock_level
	CreatedAt  time.Time `json:"createdAt"`  // inventory_items.created_at
	UpdatedAt  time.Time `json:"updatedAt"`  // inventory_items.updated_at
}

// ItemSummary is the projection of an inventory item embedded in orders.
// StockLevel is only filled on the single-order view.
type ItemSummary struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Size       string `json:"size"`
	StockLevel *int   `json:"stockLevel,omitempty"`
}
