package models

import "time"

type AlertKind string

const (
	AlertCalibrationBand      AlertKind = "calibration_band"
	AlertDistributionCreated  AlertKind = "distribution_created"
	AlertDistributionDeferred AlertKind = "distribution_deferred"
	AlertProductionShortfall  AlertKind = "production_shortfall"
)

// Alert: caixa de saída de notificações (fire-and-forget). O canal de entrega
// (e-mail/toast) é externo; aqui só registramos o evento e o payload.
type Alert struct {
	ID             uint      `gorm:"primaryKey"`
	OrganizationID uint      `gorm:"index;not null"`
	Kind           AlertKind `gorm:"size:30;index;not null"`
	Message        string    `gorm:"size:500;not null"`
	Payload        string    `gorm:"type:jsonb"`
	CreatedAt      time.Time
}
