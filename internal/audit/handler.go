package audit

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Order("created_at DESC").Limit(200)

		if orgID := c.QueryInt("organization_id"); orgID > 0 {
			q = q.Where("organization_id = ?", orgID)
		}
		if entityType := c.Query("entity_type"); entityType != "" {
			q = q.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := q.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Logs não puderam ser listados")
		}

		return c.JSON(logs)
	}
}
