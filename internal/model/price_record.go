package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PriceRecord is one observed price of a product at a store, optionally
// on a given purchase date. ProductID is a weak back-reference: the
// storage layer does not enforce it against the product collection, so
// orphaned records are possible when a product is deleted without the
// cascading delete.
type PriceRecord struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	Price        float64    `json:"price"`
	Quantity     float64    `json:"quantity"`
	UnitPrice    float64    `json:"unitPrice"`
	Store        string     `json:"store"`
	Notes        string     `json:"notes"`
	IsOnSale     bool       `json:"isOnSale"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PriceRecordInput carries the user-supplied fields for recording a price.
type PriceRecordInput struct {
	ProductID    string     `json:"productId" validate:"required"`
	Price        float64    `json:"price" validate:"required,gt=0"`
	Quantity     float64    `json:"quantity" validate:"required,gt=0"`
	Store        string     `json:"store" validate:"required"`
	Notes        string     `json:"notes"`
	IsOnSale     bool       `json:"isOnSale"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
}

// Normalized returns a copy of the input with surrounding whitespace
// stripped from the string fields.
func (in PriceRecordInput) Normalized() PriceRecordInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Store = strings.TrimSpace(in.Store)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// PriceRecordPatch carries a partial update for a price record. Nil
// fields are left unchanged; the merged result is revalidated against
// the same rules as creation. ProductID is immutable and not patchable.
type PriceRecordPatch struct {
	Price        *float64   `json:"price,omitempty"`
	Quantity     *float64   `json:"quantity,omitempty"`
	Store        *string    `json:"store,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	IsOnSale     *bool      `json:"isOnSale,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
}

// Normalized returns a copy of the patch with surrounding whitespace
// stripped from the non-nil string fields.
func (p PriceRecordPatch) Normalized() PriceRecordPatch {
	if p.Store != nil {
		store := strings.TrimSpace(*p.Store)
		p.Store = &store
	}
	if p.Notes != nil {
		notes := strings.TrimSpace(*p.Notes)
		p.Notes = &notes
	}
	return p
}

// Input returns the record's user-editable fields as an input, for
// revalidation after a patch has been merged.
func (r PriceRecord) Input() PriceRecordInput {
	return PriceRecordInput{
		ProductID:    r.ProductID,
		Price:        r.Price,
		Quantity:     r.Quantity,
		Store:        r.Store,
		Notes:        r.Notes,
		IsOnSale:     r.IsOnSale,
		PurchaseDate: r.PurchaseDate,
	}
}

// UnitPrice returns price divided by quantity, rounded half away from
// zero to two decimal places. This is the single authoritative unit
// price computation, used both at write time and for display.
func UnitPrice(price, quantity float64) float64 {
	return math.Round(price/quantity*100) / 100
}

// NewPriceRecord creates a price record from validated input, computing
// the cached unit price and stamping both timestamps.
func NewPriceRecord(in PriceRecordInput) PriceRecord {
	in = in.Normalized()
	now := time.Now()
	return PriceRecord{
		ID:           uuid.NewString(),
		ProductID:    in.ProductID,
		Price:        in.Price,
		Quantity:     in.Quantity,
		UnitPrice:    UnitPrice(in.Price, in.Quantity),
		Store:        in.Store,
		Notes:        in.Notes,
		IsOnSale:     in.IsOnSale,
		PurchaseDate: in.PurchaseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply merges the patch into the record, refreshes UpdatedAt, and
// recomputes the cached unit price when price or quantity changed.
func (r PriceRecord) Apply(patch PriceRecordPatch) PriceRecord {
	if patch.Price != nil {
		r.Price = *patch.Price
	}
	if patch.Quantity != nil {
		r.Quantity = *patch.Quantity
	}
	if patch.Price != nil || patch.Quantity != nil {
		r.UnitPrice = UnitPrice(r.Price, r.Quantity)
	}
	if patch.Store != nil {
		r.Store = strings.TrimSpace(*patch.Store)
	}
	if patch.Notes != nil {
		r.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.IsOnSale != nil {
		r.IsOnSale = *patch.IsOnSale
	}
	if patch.PurchaseDate != nil {
		r.PurchaseDate = patch.PurchaseDate
	}
	r.UpdatedAt = time.Now()
	return r
}
