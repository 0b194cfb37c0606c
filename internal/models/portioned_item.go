package models

import "time"

// PortionedItem: item porcionado produzido na CPD (ex: bolinha de massa).
// OperationalAvgWeightG é o estado de calibração: nulo até a primeira amostra,
// depois atualizado pelo controlador de calibração a cada produção finalizada.
type PortionedItem struct {
	ID             uint `gorm:"primaryKey"`
	OrganizationID uint `gorm:"index;not null"`
	Organization   Organization
	Name           string `gorm:"size:100;not null"`
	Active         bool   `gorm:"not null;default:true"`
	LotBased       bool   `gorm:"not null;default:true"` // só itens por lote calibram

	// Faixa aceitável do peso unitário (g). Invariante: min < max.
	WeightBandMinG float64 `gorm:"not null"`
	WeightBandMaxG float64 `gorm:"not null"`
	TargetWeightG  *float64

	// Peso médio operacional (g), realimentado pela calibração.
	OperationalAvgWeightG *float64

	FlourPerLotKg float64 `gorm:"not null"`           // farinha consumida por lote
	MassPerLotKg  float64 `gorm:"not null"`           // massa gerada por lote
	MarginPercent float64 `gorm:"not null;default:0"` // folga de capacidade no cálculo de lotes

	CreatedAt time.Time
	UpdatedAt time.Time
}
