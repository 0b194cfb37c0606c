package calibration

import (
	"cpd-backend/internal/database"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SampleResponse struct {
	ID                   uint     `json:"id"`
	ItemID               uint     `json:"item_id"`
	ItemName             string   `json:"item_name"`
	ProductionRecordID   uint     `json:"production_record_id"`
	LotsProduced         int      `json:"lots_produced"`
	ExpectedUnits        int      `json:"expected_units"`
	ActualUnits          int      `json:"actual_units"`
	MassUsedG            float64  `json:"mass_used_g"`
	AvgRealWeightG       float64  `json:"avg_real_weight_g"`
	BandStatus           string   `json:"band_status"`
	DeviationG           float64  `json:"deviation_g"`
	PriorOperationalAvgG *float64 `json:"prior_operational_avg_g"`
	NewOperationalAvgG   *float64 `json:"new_operational_avg_g"`
	CreatedAt            string   `json:"created_at"`
}

// GET /api/calibration/samples?item_id=
// Histórico de calibração do item, mais recente primeiro.
func ListSamplesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID := c.QueryInt("item_id")
		if itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id obrigatório")
		}

		var samples []models.CalibrationSample
		if err := database.DB.
			Preload("Item").
			Where("item_id = ?", itemID).
			Order("created_at DESC, id DESC").
			Limit(100).
			Find(&samples).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Amostras não puderam ser listadas")
		}

		resp := make([]SampleResponse, 0, len(samples))
		for _, s := range samples {
			resp = append(resp, SampleResponse{
				ID:                   s.ID,
				ItemID:               s.ItemID,
				ItemName:             s.Item.Name,
				ProductionRecordID:   s.ProductionRecordID,
				LotsProduced:         s.LotsProduced,
				ExpectedUnits:        s.ExpectedUnits,
				ActualUnits:          s.ActualUnits,
				MassUsedG:            s.MassUsedG,
				AvgRealWeightG:       s.AvgRealWeightG,
				BandStatus:           string(s.BandStatus),
				DeviationG:           s.DeviationG,
				PriorOperationalAvgG: s.PriorOperationalAvgG,
				NewOperationalAvgG:   s.NewOperationalAvgG,
				CreatedAt:            s.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}
