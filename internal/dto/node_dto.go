package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// NodeRequest is the full payload for POST and PUT. Level is not accepted:
// it is derived from node_type and supplier on every write.
type NodeRequest struct {
	Name        string           `json:"name"         validate:"required,max=100"`
	Email       string           `json:"email"        validate:"required,email"`
	City        string           `json:"city"         validate:"required,max=100"`
	Street      string           `json:"street"       validate:"required,max=100"`
	HouseNumber string           `json:"house_number" validate:"required,max=20"`
	NodeType    string           `json:"node_type"    validate:"required,oneof=Factory RetailNetwork IndividualEntrepreneur"`
	Supplier    *uuid.UUID       `json:"supplier"`
	ProductIDs  []uuid.UUID      `json:"product_ids"`
	Debt        *decimal.Decimal `json:"debt"         validate:"omitempty,min=0,lte=99999999.99"`
}

// PatchNodeRequest carries only the fields the caller wants to change.
type PatchNodeRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,min=1,max=100"`
	Email       *string          `json:"email"        validate:"omitempty,email"`
	City        *string          `json:"city"         validate:"omitempty,min=1,max=100"`
	Street      *string          `json:"street"       validate:"omitempty,min=1,max=100"`
	HouseNumber *string          `json:"house_number" validate:"omitempty,min=1,max=20"`
	NodeType    *string          `json:"node_type"    validate:"omitempty,oneof=Factory RetailNetwork IndividualEntrepreneur"`
	Supplier    OptionalUUID     `json:"supplier"`
	ProductIDs  *[]uuid.UUID     `json:"product_ids"`
	Debt        *decimal.Decimal `json:"debt"         validate:"omitempty,min=0,lte=99999999.99"`
}

// OptionalUUID tells an absent key apart from an explicit null.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

// Some returns an OptionalUUID set to id.
func Some(id uuid.UUID) OptionalUUID { return OptionalUUID{Set: true, Value: &id} }

// Null returns an OptionalUUID explicitly cleared.
func Null() OptionalUUID { return OptionalUUID{Set: true} }

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// NodeFilter is bound from the query string of GET /v1/network-nodes.
type NodeFilter struct {
	City     string `form:"city"`
	NodeType string `form:"node_type" validate:"omitempty,oneof=Factory RetailNetwork IndividualEntrepreneur"`
	Level    *int   `form:"level"     validate:"omitempty,min=0,max=2"`
	Supplier string `form:"supplier"  validate:"omitempty,uuid"`
}

type ClearDebtRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NodeResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	City         string            `json:"city"`
	Street       string            `json:"street"`
	HouseNumber  string            `json:"house_number"`
	NodeType     string            `json:"node_type"`
	Supplier     *uuid.UUID        `json:"supplier"`
	SupplierName *string           `json:"supplier_name"`
	Products     []ProductResponse `json:"products"`
	Debt         string            `json:"debt"` // two fractional digits, e.g. "0.00"
	CreatedAt    time.Time         `json:"created_at"`
	Level        int               `json:"level"`
}

type ClearDebtResponse struct {
	Cleared int64 `json:"cleared"`
}
