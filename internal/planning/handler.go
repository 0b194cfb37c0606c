package planning

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/planning/preview?item_id=&demand=
// Simulação do plano de lotes antes do congelamento (só leitura).
func PreviewLotPlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID := c.QueryInt("item_id")
		demand := c.QueryInt("demand")
		if itemID <= 0 || demand < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id obrigatório e demand não pode ser negativo")
		}

		var item models.PortionedItem
		if err := database.DB.First(&item, "id = ?", itemID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Item não encontrado")
		}

		plan, err := ForItem(&item, demand)
		if err != nil {
			if faults.IsConfiguration(err) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"item_id":   item.ID,
			"item_name": item.Name,
			"demand":    demand,
			"plan":      plan,
		})
	}
}
