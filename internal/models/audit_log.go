package models

import "time"

type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionFreeze   AuditAction = "freeze"
	AuditActionFinalize AuditAction = "finalize"
	AuditActionExtra    AuditAction = "extra_production"
	AuditActionAdjust   AuditAction = "stock_adjust"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrganizationID *uint `json:"organization_id"`

	// Qual entidade? (ex: "demand_snapshot", "production_record", "manifest")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action AuditAction `gorm:"size:30" json:"action"`

	Description string `gorm:"size:255" json:"description"`

	// Estado antes/depois (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
