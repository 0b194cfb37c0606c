package models

import "time"

type ManifestStatus string

const (
	// Único estado tratado aqui; conferência de peso/volume e despacho
	// acontecem na logística.
	ManifestAwaitingReview ManifestStatus = "awaiting_review"
)

// DistributionManifest: romaneio de distribuição CPD → loja.
type DistributionManifest struct {
	ID             uint   `gorm:"primaryKey"`
	Code           string `gorm:"size:36;not null;unique"` // uuid do documento
	OrganizationID uint   `gorm:"index;not null"`
	Organization   Organization
	StoreID        uint `gorm:"index;not null"`
	Store          Store
	Status         ManifestStatus `gorm:"size:20;index;not null;default:awaiting_review"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Lines []ManifestLine `gorm:"foreignKey:ManifestID;constraint:OnDelete:CASCADE"`
}

// ManifestLine: item do romaneio. Uma produção gera no máximo uma linha por
// (produção, item, loja); o índice único segura a corrida de gatilhos
// concorrentes: o insert duplicado falha e é tratado como "já distribuído".
// StoreID é denormalizado da manifest para o índice funcionar mesmo quando
// dois gatilhos criam romaneios diferentes para a mesma loja.
// Peso e volumes ficam nulos até a conferência manual.
type ManifestLine struct {
	ID                 uint `gorm:"primaryKey"`
	ManifestID         uint `gorm:"index;not null"`
	StoreID            uint `gorm:"not null;uniqueIndex:idx_line_record_item_store"`
	ItemID             uint `gorm:"not null;uniqueIndex:idx_line_record_item_store"`
	Item               PortionedItem `gorm:"foreignKey:ItemID"`
	ProductionRecordID uint          `gorm:"not null;uniqueIndex:idx_line_record_item_store"`
	Quantity           int           `gorm:"not null"`
	WeightKg           *float64
	Volumes            *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
