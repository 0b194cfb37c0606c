package distribution

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ManifestSummary struct {
	ID        uint   `json:"id"`
	Code      string `json:"code"`
	StoreID   uint   `json:"store_id"`
	StoreName string `json:"store_name"`
	Status    string `json:"status"`
	Lines     int    `json:"lines"`
	Units     int    `json:"units"`
	CreatedAt string `json:"created_at"`
}

// GET /api/manifests?organization_id=
func ListManifestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.QueryInt("organization_id")
		if orgID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
		}

		var manifests []models.DistributionManifest
		if err := database.DB.
			Preload("Store").
			Preload("Lines").
			Where("organization_id = ?", orgID).
			Order("id DESC").
			Limit(200).
			Find(&manifests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Romaneios não puderam ser listados")
		}

		resp := make([]ManifestSummary, 0, len(manifests))
		for _, m := range manifests {
			units := 0
			for _, l := range m.Lines {
				units += l.Quantity
			}
			resp = append(resp, ManifestSummary{
				ID:        m.ID,
				Code:      m.Code,
				StoreID:   m.StoreID,
				StoreName: m.Store.Name,
				Status:    string(m.Status),
				Lines:     len(m.Lines),
				Units:     units,
				CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

type ManifestLineResponse struct {
	ID                 uint     `json:"id"`
	ItemID             uint     `json:"item_id"`
	ItemName           string   `json:"item_name"`
	ProductionRecordID uint     `json:"production_record_id"`
	Quantity           int      `json:"quantity"`
	WeightKg           *float64 `json:"weight_kg"`
	Volumes            *int     `json:"volumes"`
}

// GET /api/manifests/:id
func GetManifestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var manifest models.DistributionManifest
		if err := database.DB.
			Preload("Store").
			Preload("Lines.Item").
			First(&manifest, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Romaneio não encontrado")
		}

		lines := make([]ManifestLineResponse, 0, len(manifest.Lines))
		for _, l := range manifest.Lines {
			lines = append(lines, ManifestLineResponse{
				ID:                 l.ID,
				ItemID:             l.ItemID,
				ItemName:           l.Item.Name,
				ProductionRecordID: l.ProductionRecordID,
				Quantity:           l.Quantity,
				WeightKg:           l.WeightKg,
				Volumes:            l.Volumes,
			})
		}

		return c.JSON(fiber.Map{
			"id":         manifest.ID,
			"code":       manifest.Code,
			"store_id":   manifest.StoreID,
			"store_name": manifest.Store.Name,
			"status":     string(manifest.Status),
			"created_at": manifest.CreatedAt.Format("2006-01-02 15:04:05"),
			"lines":      lines,
		})
	}
}

type ReconcileRequest struct {
	OrganizationID uint `json:"organization_id"`
}

// POST /api/distribution/reconcile
// Varredura manual das distribuições adiadas. Pode rodar quantas vezes
// quiser; a deduplicação do gatilho segura repetições.
func ReconcileHandler(sweep *Sweep) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReconcileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.OrganizationID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
		}

		result, err := sweep.Run(body.OrganizationID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	}
}
