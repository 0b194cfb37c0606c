package notify

import (
	"encoding/json"
	"log"

	"cpd-backend/internal/models"

	"gorm.io/gorm"
)

// Notifier: canal de notificação fire-and-forget. A entrega (e-mail/toast)
// é responsabilidade de fora; falha de publicação nunca derruba a operação
// que notificou.
type Notifier interface {
	Publish(orgID uint, kind models.AlertKind, message string, payload any)
}

// Outbox grava cada alerta como linha na tabela alerts; o consumidor externo
// drena de lá.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

func (o *Outbox) Publish(orgID uint, kind models.AlertKind, message string, payload any) {
	payloadStr := "null"
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			payloadStr = string(b)
		}
	}

	alert := models.Alert{
		OrganizationID: orgID,
		Kind:           kind,
		Message:        message,
		Payload:        payloadStr,
	}
	if err := o.db.Create(&alert).Error; err != nil {
		log.Printf("Alerta não gravado (%s): %v", kind, err)
	}
}
