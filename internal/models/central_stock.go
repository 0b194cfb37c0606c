package models

import "time"

// CentralStock: saldo de unidades prontas na CPD, por item.
// Creditado pela finalização da produção; a baixa acontece no despacho
// do romaneio (fora deste núcleo).
type CentralStock struct {
	ID             uint `gorm:"primaryKey"`
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_stock_org_item"`
	Organization   Organization
	ItemID         uint          `gorm:"not null;uniqueIndex:idx_stock_org_item"`
	Item           PortionedItem `gorm:"foreignKey:ItemID"`
	Quantity       int           `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
