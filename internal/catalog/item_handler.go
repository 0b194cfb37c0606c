package catalog

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ItemRequest struct {
	OrganizationID uint     `json:"organization_id"`
	Name           string   `json:"name"`
	LotBased       *bool    `json:"lot_based"`
	WeightBandMinG float64  `json:"weight_band_min_g"`
	WeightBandMaxG float64  `json:"weight_band_max_g"`
	TargetWeightG  *float64 `json:"target_weight_g"`
	FlourPerLotKg  float64  `json:"flour_per_lot_kg"`
	MassPerLotKg   float64  `json:"mass_per_lot_kg"`
	MarginPercent  float64  `json:"margin_percent"`
	Active         *bool    `json:"active"`
}

// POST /api/items
// O peso médio operacional NÃO entra aqui: ele só nasce da calibração.
// Até a primeira amostra, o planejamento usa o peso alvo.
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.OrganizationID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id e name são obrigatórios")
		}
		if err := validateItemNumbers(&body); err != nil {
			return err
		}

		var org models.Organization
		if err := database.DB.First(&org, "id = ?", body.OrganizationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Organização não encontrada")
		}

		item := models.PortionedItem{
			OrganizationID: body.OrganizationID,
			Name:           body.Name,
			Active:         true,
			LotBased:       true,
			WeightBandMinG: body.WeightBandMinG,
			WeightBandMaxG: body.WeightBandMaxG,
			TargetWeightG:  body.TargetWeightG,
			FlourPerLotKg:  body.FlourPerLotKg,
			MassPerLotKg:   body.MassPerLotKg,
			MarginPercent:  body.MarginPercent,
		}
		if body.LotBased != nil {
			item.LotBased = *body.LotBased
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Item não criado")
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GET /api/items?organization_id=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Order("id")
		if orgID := c.QueryInt("organization_id"); orgID > 0 {
			q = q.Where("organization_id = ?", orgID)
		}

		var items []models.PortionedItem
		if err := q.Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Itens não puderam ser listados")
		}
		return c.JSON(items)
	}
}

// PUT /api/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var item models.PortionedItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != "" {
			item.Name = body.Name
		}
		if body.WeightBandMinG > 0 {
			item.WeightBandMinG = body.WeightBandMinG
		}
		if body.WeightBandMaxG > 0 {
			item.WeightBandMaxG = body.WeightBandMaxG
		}
		if body.TargetWeightG != nil {
			item.TargetWeightG = body.TargetWeightG
		}
		if body.FlourPerLotKg > 0 {
			item.FlourPerLotKg = body.FlourPerLotKg
		}
		if body.MassPerLotKg > 0 {
			item.MassPerLotKg = body.MassPerLotKg
		}
		if body.MarginPercent >= 0 {
			item.MarginPercent = body.MarginPercent
		}
		if body.LotBased != nil {
			item.LotBased = *body.LotBased
		}
		if body.Active != nil {
			item.Active = *body.Active
		}

		if item.WeightBandMinG >= item.WeightBandMaxG {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Faixa de peso inválida: mínimo deve ser menor que o máximo")
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Item não atualizado")
		}
		return c.JSON(item)
	}
}

func validateItemNumbers(body *ItemRequest) error {
	if body.WeightBandMinG <= 0 || body.WeightBandMaxG <= 0 || body.WeightBandMinG >= body.WeightBandMaxG {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Faixa de peso inválida: exige 0 < mínimo < máximo (em gramas)")
	}
	if body.TargetWeightG != nil && *body.TargetWeightG <= 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "target_weight_g deve ser positivo")
	}
	if body.MassPerLotKg <= 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "mass_per_lot_kg deve ser positivo")
	}
	if body.FlourPerLotKg < 0 || body.MarginPercent < 0 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "flour_per_lot_kg e margin_percent não podem ser negativos")
	}
	return nil
}
