package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NodeType is the role a NetworkNode plays in the supply chain.
type NodeType string

const (
	NodeTypeFactory                NodeType = "Factory"
	NodeTypeRetailNetwork          NodeType = "RetailNetwork"
	NodeTypeIndividualEntrepreneur NodeType = "IndividualEntrepreneur"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeFactory, NodeTypeRetailNetwork, NodeTypeIndividualEntrepreneur:
		return true
	}
	return false
}

// NetworkNode is one link of the trading network.
// Level is derived from the supplier chain and is never taken from callers.
type NetworkNode struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Email       string          `gorm:"not null"`
	City        string          `gorm:"type:varchar(100);index;not null"`
	Street      string          `gorm:"type:varchar(100);not null"`
	HouseNumber string          `gorm:"type:varchar(20);not null"`
	NodeType    NodeType        `gorm:"type:varchar(50);not null"`
	Level       int             `gorm:"not null;index"`
	SupplierID  *uuid.UUID      `gorm:"type:uuid;index"`
	Debt        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt   time.Time

	Supplier *NetworkNode `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
	Products []Product    `gorm:"many2many:network_node_products;constraint:OnDelete:CASCADE"`
}

func (NetworkNode) TableName() string { return "network_nodes" }
