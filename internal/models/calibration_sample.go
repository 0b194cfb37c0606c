package models

import "time"

type BandStatus string

const (
	BandWithin BandStatus = "within"
	BandBelow  BandStatus = "below"
	BandAbove  BandStatus = "above"
)

// CalibrationSample: resultado medido de uma produção finalizada.
// Append-only: nunca sofre update (exceto o back-fill de NewOperationalAvgG
// logo após o recálculo da média) nem delete; a média móvel consome as
// amostras mais recentes.
type CalibrationSample struct {
	ID                 uint `gorm:"primaryKey"`
	ItemID             uint `gorm:"index;not null"`
	Item               PortionedItem `gorm:"foreignKey:ItemID"`
	ProductionRecordID uint          `gorm:"index;not null"`

	LotsProduced  int     `gorm:"not null"`
	ExpectedUnits int     `gorm:"not null"`
	ActualUnits   int     `gorm:"not null"`
	FinalWeightG  float64 `gorm:"not null"`
	ScrapWeightG  float64 `gorm:"not null"`

	MassUsedG      float64    `gorm:"not null"` // final + sobra de massa
	AvgRealWeightG float64    `gorm:"not null"` // massa usada / unidades reais
	BandStatus     BandStatus `gorm:"size:10;not null"`
	DeviationG     float64    `gorm:"not null"` // distância até a borda da faixa (0 se dentro)

	PriorOperationalAvgG *float64
	NewOperationalAvgG   *float64

	CreatedAt time.Time
}
