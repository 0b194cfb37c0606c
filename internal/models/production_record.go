package models

import "time"

type ProductionStatus string

const (
	StatusToProduce    ProductionStatus = "to_produce"
	StatusInPrep       ProductionStatus = "in_prep"
	StatusInPortioning ProductionStatus = "in_portioning"
	StatusFinished     ProductionStatus = "finished"
)

// NextStatus: transição linear permitida. "finished" é terminal.
func NextStatus(s ProductionStatus) (ProductionStatus, bool) {
	switch s {
	case StatusToProduce:
		return StatusInPrep, true
	case StatusInPrep:
		return StatusInPortioning, true
	case StatusInPortioning:
		return StatusFinished, true
	default:
		return "", false
	}
}

// ProductionRecord: uma rodada de produção de um item para um dia operacional.
// Criado no congelamento da demanda; avança to_produce → in_prep →
// in_portioning → finished, sem pular etapa e sem voltar.
type ProductionRecord struct {
	ID             uint `gorm:"primaryKey"`
	OrganizationID uint `gorm:"index;not null"`
	Organization   Organization
	ItemID         uint `gorm:"index;not null"`
	Item           PortionedItem `gorm:"foreignKey:ItemID"`
	OperationalDay time.Time     `gorm:"type:date;index;not null"`

	Status ProductionStatus `gorm:"size:20;index;not null;default:to_produce"`

	// Plano calculado no congelamento (calibração vigente na hora).
	LotsPlanned   int     `gorm:"not null"`
	ExpectedUnits int     `gorm:"not null"` // demanda total + extras solicitados
	FlourNeededKg float64 `gorm:"not null"`
	MassTotalKg   float64 `gorm:"not null"`

	// Resultado preenchido na finalização.
	LotsProduced  int
	ActualUnits   int
	FinalWeightKg float64
	ScrapWeightKg float64
	FinishedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Stores []ProductionRecordStore `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// ProductionRecordStore: quebra da demanda por loja (nome denormalizado
// para o romaneio não depender de join).
type ProductionRecordStore struct {
	ID        uint `gorm:"primaryKey"`
	RecordID  uint `gorm:"index;not null"`
	StoreID   uint `gorm:"index;not null"`
	StoreName string `gorm:"size:100;not null"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
}
