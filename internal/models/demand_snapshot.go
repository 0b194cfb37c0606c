package models

import "time"

// DemandSnapshot: demanda congelada no corte do dia. Imutável após criação:
// nunca recebe update, só leitura pelo planejamento do dia.
// O índice único é a proteção real contra congelamento duplicado concorrente
// (automático + manual ao mesmo tempo).
type DemandSnapshot struct {
	ID             uint `gorm:"primaryKey"`
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_snapshot_org_day_item_store"`
	Organization   Organization
	OperationalDay time.Time `gorm:"type:date;not null;uniqueIndex:idx_snapshot_org_day_item_store"`
	ItemID         uint      `gorm:"not null;uniqueIndex:idx_snapshot_org_day_item_store"`
	Item           PortionedItem `gorm:"foreignKey:ItemID"`
	StoreID        uint          `gorm:"not null;uniqueIndex:idx_snapshot_org_day_item_store"`
	Store          Store
	Quantity       int       `gorm:"not null"`
	FrozenAt       time.Time `gorm:"not null"`
	CreatedAt      time.Time
}
