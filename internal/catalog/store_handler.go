package catalog

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StoreRequest struct {
	OrganizationID uint   `json:"organization_id"`
	Name           string `json:"name"`
	Active         *bool  `json:"active"`
}

// POST /api/stores
func CreateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StoreRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.OrganizationID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id e name são obrigatórios")
		}

		var org models.Organization
		if err := database.DB.First(&org, "id = ?", body.OrganizationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Organização não encontrada")
		}

		store := models.Store{
			OrganizationID: body.OrganizationID,
			Name:           body.Name,
			Active:         true,
		}
		if err := database.DB.Create(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loja não criada")
		}
		return c.Status(fiber.StatusCreated).JSON(store)
	}
}

// GET /api/stores?organization_id=
func ListStoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Order("id")
		if orgID := c.QueryInt("organization_id"); orgID > 0 {
			q = q.Where("organization_id = ?", orgID)
		}

		var stores []models.Store
		if err := q.Find(&stores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Lojas não puderam ser listadas")
		}
		return c.JSON(stores)
	}
}

// PUT /api/stores/:id
func UpdateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var store models.Store
		if err := database.DB.First(&store, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Loja não encontrada")
		}

		var body StoreRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != "" {
			store.Name = body.Name
		}
		if body.Active != nil {
			// loja desativada sai da derivação de demanda no próximo congelamento
			store.Active = *body.Active
		}

		if err := database.DB.Save(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loja não atualizada")
		}
		return c.JSON(store)
	}
}
