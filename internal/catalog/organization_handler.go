package catalog

import (
	"time"

	"cpd-backend/internal/config"
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type OrganizationRequest struct {
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`    // IANA; vazio = default do config
	CutoffTime string `json:"cutoff_time"` // "HH:MM"; vazio = default do config
	Active     *bool  `json:"active"`
}

// POST /api/organizations
func CreateOrganizationHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OrganizationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name obrigatório")
		}

		tz := body.Timezone
		if tz == "" {
			tz = cfg.DefaultTimezone
		}
		cutoff := body.CutoffTime
		if cutoff == "" {
			cutoff = cfg.DefaultCutoffTime
		}
		if err := validateOrgSettings(tz, cutoff); err != nil {
			return err
		}

		org := models.Organization{
			Name:       body.Name,
			Timezone:   tz,
			CutoffTime: cutoff,
			Active:     true,
		}
		if err := database.DB.Create(&org).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Organização não criada (nome já em uso?)")
		}
		return c.Status(fiber.StatusCreated).JSON(org)
	}
}

// GET /api/organizations
func ListOrganizationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orgs []models.Organization
		if err := database.DB.Order("id").Find(&orgs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Organizações não puderam ser listadas")
		}
		return c.JSON(orgs)
	}
}

// PUT /api/organizations/:id
func UpdateOrganizationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var org models.Organization
		if err := database.DB.First(&org, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Organização não encontrada")
		}

		var body OrganizationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != "" {
			org.Name = body.Name
		}
		if body.Timezone != "" {
			org.Timezone = body.Timezone
		}
		if body.CutoffTime != "" {
			org.CutoffTime = body.CutoffTime
		}
		if body.Active != nil {
			org.Active = *body.Active
		}
		if err := validateOrgSettings(org.Timezone, org.CutoffTime); err != nil {
			return err
		}

		if err := database.DB.Save(&org).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Organização não atualizada")
		}
		return c.JSON(org)
	}
}

// Fuso e corte inválidos quebrariam o congelamento automático; barra na borda.
func validateOrgSettings(tz, cutoff string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "timezone deve ser um fuso IANA válido (ex: America/Sao_Paulo)")
	}
	if _, err := time.Parse("15:04", cutoff); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "cutoff_time deve ser 'HH:MM' com zero à esquerda")
	}
	return nil
}
