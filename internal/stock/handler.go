package stock

import (
	"fmt"

	"cpd-backend/internal/audit"
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StockResponse struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// GET /api/stock?organization_id=
func ListCentralStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.QueryInt("organization_id")
		if orgID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
		}

		var rows []models.CentralStock
		if err := database.DB.
			Preload("Item").
			Where("organization_id = ?", orgID).
			Order("item_id").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Estoque não pôde ser listado")
		}

		resp := make([]StockResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, StockResponse{ItemID: r.ItemID, ItemName: r.Item.Name, Quantity: r.Quantity})
		}
		return c.JSON(resp)
	}
}

type AdjustStockRequest struct {
	OrganizationID uint   `json:"organization_id"`
	ItemID         uint   `json:"item_id"`
	Delta          int    `json:"delta"` // positivo credita, negativo baixa
	Reason         string `json:"reason"`
}

// POST /api/stock/adjust
// Ajuste manual (inventário, perda, reposição externa). A baixa nunca deixa
// o saldo negativo.
func AdjustStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.OrganizationID == 0 || body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id e item_id são obrigatórios")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta não pode ser zero")
		}
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "reason obrigatório em ajuste manual")
		}

		before, err := Available(database.DB, body.OrganizationID, body.ItemID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Saldo não pôde ser lido")
		}
		if before+body.Delta < 0 {
			return fiber.NewError(fiber.StatusUnprocessableEntity,
				fmt.Sprintf("Saldo insuficiente para a baixa: %d disponível, ajuste de %d", before, body.Delta))
		}

		if body.Delta > 0 {
			err = Credit(database.DB, body.OrganizationID, body.ItemID, body.Delta)
		} else {
			res := database.DB.Model(&models.CentralStock{}).
				Where("organization_id = ? AND item_id = ? AND quantity + ? >= 0", body.OrganizationID, body.ItemID, body.Delta).
				Update("quantity", gorm.Expr("quantity + ?", body.Delta))
			err = res.Error
			if err == nil && res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, "Saldo mudou durante o ajuste; tente de novo")
			}
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ajuste não gravado")
		}

		after, err := Available(database.DB, body.OrganizationID, body.ItemID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Saldo não pôde ser relido")
		}

		_ = audit.WriteLog(audit.LogOptions{
			OrganizationID: &body.OrganizationID,
			EntityType:     "central_stock",
			EntityID:       body.ItemID,
			Action:         models.AuditActionAdjust,
			Description:    fmt.Sprintf("Ajuste de estoque do item %d: %+d (%s)", body.ItemID, body.Delta, body.Reason),
			Before:         fiber.Map{"quantity": before},
			After:          fiber.Map{"quantity": after},
		})

		return c.JSON(fiber.Map{"item_id": body.ItemID, "quantity": after})
	}
}
