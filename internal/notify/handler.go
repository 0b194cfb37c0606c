package notify

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AlertResponse struct {
	ID             uint   `json:"id"`
	OrganizationID uint   `json:"organization_id"`
	Kind           string `json:"kind"`
	Message        string `json:"message"`
	Payload        string `json:"payload"`
	CreatedAt      string `json:"created_at"`
}

// GET /api/alerts
func ListAlertsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.QueryInt("organization_id")
		if orgID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
		}

		q := database.DB.
			Where("organization_id = ?", orgID).
			Order("created_at DESC").
			Limit(200)
		if kind := c.Query("kind"); kind != "" {
			q = q.Where("kind = ?", kind)
		}

		var alerts []models.Alert
		if err := q.Find(&alerts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alertas não puderam ser listados")
		}

		resp := make([]AlertResponse, 0, len(alerts))
		for _, a := range alerts {
			resp = append(resp, AlertResponse{
				ID:             a.ID,
				OrganizationID: a.OrganizationID,
				Kind:           string(a.Kind),
				Message:        a.Message,
				Payload:        a.Payload,
				CreatedAt:      a.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
