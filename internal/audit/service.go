package audit

import (
	"encoding/json"
	"fmt"

	"cpd-backend/internal/database"
	"cpd-backend/internal/models"
)

type LogOptions struct {
	OrganizationID *uint
	EntityType     string
	EntityID       uint
	Action         models.AuditAction
	Description    string
	Before         any
	After          any
}

func WriteLog(opts LogOptions) error {
	// jsonb do Postgres não aceita string vazia; usa "null" como default
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		OrganizationID: opts.OrganizationID,
		EntityType:     opts.EntityType,
		EntityID:       opts.EntityID,
		Action:         opts.Action,
		Description:    opts.Description,
		BeforeData:     beforeStr,
		AfterData:      afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log não gravado: %w", err)
	}

	return nil
}
