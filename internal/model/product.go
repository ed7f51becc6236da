package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product represents a trackable item with a name and measurement unit.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput carries the user-supplied fields for creating a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Unit        string `json:"unit" validate:"required,max=20"`
	Description string `json:"description" validate:"max=500"`
}

// Normalized returns a copy of the input with surrounding whitespace
// stripped from every field. Validation runs on the normalized form, so
// a whitespace-only name fails the required check.
func (in ProductInput) Normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ProductPatch carries a partial update for a product. Nil fields are
// left unchanged. The merged result is revalidated against the same
// rules as creation, so a patch cannot blank out a required field.
type ProductPatch struct {
	Name        *string `json:"name,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Normalized returns a copy of the patch with surrounding whitespace
// stripped from the non-nil string fields.
func (p ProductPatch) Normalized() ProductPatch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Unit != nil {
		unit := strings.TrimSpace(*p.Unit)
		p.Unit = &unit
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		p.Description = &description
	}
	return p
}

// Input returns the product's user-editable fields as an input, for
// revalidation after a patch has been merged.
func (p Product) Input() ProductInput {
	return ProductInput{
		Name:        p.Name,
		Unit:        p.Unit,
		Description: p.Description,
	}
}

// NewProduct creates a product from validated input, generating a fresh
// ID and stamping both timestamps.
func NewProduct(in ProductInput) Product {
	now := time.Now()
	return Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Unit:        strings.TrimSpace(in.Unit),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges the patch into the product and refreshes UpdatedAt.
// ID and CreatedAt are never touched.
func (p Product) Apply(patch ProductPatch) Product {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Unit != nil {
		p.Unit = strings.TrimSpace(*patch.Unit)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	p.UpdatedAt = time.Now()
	return p
}
