package models

import "time"

// StoreItemPar: estoque ideal diário de um item em uma loja.
// A demanda do dia = par - sobra final da contagem (nunca negativa).
type StoreItemPar struct {
	ID        uint `gorm:"primaryKey"`
	StoreID   uint `gorm:"not null;uniqueIndex:idx_store_item_par"`
	Store     Store
	ItemID    uint `gorm:"not null;uniqueIndex:idx_store_item_par"`
	Item      PortionedItem `gorm:"foreignKey:ItemID"`
	ParLevel  int           `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
