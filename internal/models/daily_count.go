package models

import "time"

// DailyCount: contagem final enviada pela loja para um dia operacional.
// Upsert por (loja, item, dia): a loja pode corrigir a contagem até o corte.
type DailyCount struct {
	ID             uint `gorm:"primaryKey"`
	StoreID        uint `gorm:"not null;uniqueIndex:idx_count_store_item_day"`
	Store          Store
	ItemID         uint          `gorm:"not null;uniqueIndex:idx_count_store_item_day"`
	Item           PortionedItem `gorm:"foreignKey:ItemID"`
	OperationalDay time.Time     `gorm:"type:date;not null;uniqueIndex:idx_count_store_item_day"`
	FinalLeftover  int           `gorm:"not null"` // sobra final contada na loja
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
