package production

import (
	"fmt"
	"time"

	"cpd-backend/internal/audit"
	"cpd-backend/internal/database"
	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StoreBreakdownResponse struct {
	StoreID   uint   `json:"store_id"`
	StoreName string `json:"store_name"`
	Quantity  int    `json:"quantity"`
}

type RecordResponse struct {
	ID             uint   `json:"id"`
	ItemID         uint   `json:"item_id"`
	ItemName       string `json:"item_name"`
	OperationalDay string `json:"operational_day"`
	Status         string `json:"status"`

	LotsPlanned   int     `json:"lots_planned"`
	ExpectedUnits int     `json:"expected_units"`
	FlourNeededKg float64 `json:"flour_needed_kg"`
	MassTotalKg   float64 `json:"mass_total_kg"`

	LotsProduced  int     `json:"lots_produced"`
	ActualUnits   int     `json:"actual_units"`
	FinalWeightKg float64 `json:"final_weight_kg"`
	ScrapWeightKg float64 `json:"scrap_weight_kg"`
	FinishedAt    *string `json:"finished_at"`

	Stores []StoreBreakdownResponse `json:"stores"`
}

// GET /api/production-records?organization_id=&day=
func ListRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.QueryInt("organization_id")
		if orgID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
		}

		q := database.DB.
			Preload("Item").
			Preload("Stores").
			Where("organization_id = ?", orgID)

		if dayStr := c.Query("day"); dayStr != "" {
			day, err := time.Parse("2006-01-02", dayStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "day deve ser 'YYYY-MM-DD'")
			}
			q = q.Where("operational_day = ?", day)
		}

		var records []models.ProductionRecord
		if err := q.Order("operational_day DESC, item_id").Limit(200).Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Produções não puderam ser listadas")
		}

		resp := make([]RecordResponse, 0, len(records))
		for _, rec := range records {
			resp = append(resp, toRecordResponse(&rec))
		}
		return c.JSON(resp)
	}
}

// POST /api/production-records/:id/advance
func AdvanceHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		rec, err := engine.Advance(uint(id))
		if err != nil {
			return mapEngineError(err)
		}
		return c.JSON(toRecordResponse(rec))
	}
}

type FinalizeRequest struct {
	LotsProduced int     `json:"lots_produced"`
	ActualUnits  int     `json:"actual_units"`
	FinalWeightG float64 `json:"final_weight_g"`
	ScrapWeightG float64 `json:"scrap_weight_g"`
}

// POST /api/production-records/:id/finalize
// Fecha a produção e dispara calibração + distribuição. Finalização repetida
// volta 200 com already_finished, nunca erro.
func FinalizeHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body FinalizeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		result, err := engine.Finalize(uint(id), FinalizeInput{
			LotsProduced: body.LotsProduced,
			ActualUnits:  body.ActualUnits,
			FinalWeightG: body.FinalWeightG,
			ScrapWeightG: body.ScrapWeightG,
		})
		if err != nil {
			return mapEngineError(err)
		}

		if !result.AlreadyFinished && result.Record != nil {
			_ = audit.WriteLog(audit.LogOptions{
				OrganizationID: &result.Record.OrganizationID,
				EntityType:     "production_record",
				EntityID:       result.Record.ID,
				Action:         models.AuditActionFinalize,
				Description: fmt.Sprintf("Produção %d finalizada: %d lotes, %d unidades",
					result.Record.ID, body.LotsProduced, body.ActualUnits),
				After: result.Record,
			})
		}

		return c.JSON(result)
	}
}

type ExtraRequest struct {
	ExtraUnits int    `json:"extra_units"`
	Reason     string `json:"reason"`
}

// POST /api/production-records/:id/extra
func ExtraHandler(engine *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body ExtraRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "reason obrigatório em produção extra")
		}

		result, err := engine.RequestExtra(uint(id), body.ExtraUnits, body.Reason)
		if err != nil {
			return mapEngineError(err)
		}

		if rec, recErr := engine.records.Get(uint(id)); recErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				OrganizationID: &rec.OrganizationID,
				EntityType:     "production_record",
				EntityID:       rec.ID,
				Action:         models.AuditActionExtra,
				Description: fmt.Sprintf("Produção extra no registro %d: +%d unidades (%s)",
					rec.ID, body.ExtraUnits, body.Reason),
				After: result,
			})
		}

		return c.JSON(result)
	}
}

func toRecordResponse(rec *models.ProductionRecord) RecordResponse {
	resp := RecordResponse{
		ID:             rec.ID,
		ItemID:         rec.ItemID,
		ItemName:       rec.Item.Name,
		OperationalDay: rec.OperationalDay.Format("2006-01-02"),
		Status:         string(rec.Status),
		LotsPlanned:    rec.LotsPlanned,
		ExpectedUnits:  rec.ExpectedUnits,
		FlourNeededKg:  rec.FlourNeededKg,
		MassTotalKg:    rec.MassTotalKg,
		LotsProduced:   rec.LotsProduced,
		ActualUnits:    rec.ActualUnits,
		FinalWeightKg:  rec.FinalWeightKg,
		ScrapWeightKg:  rec.ScrapWeightKg,
	}
	if rec.FinishedAt != nil {
		s := rec.FinishedAt.Format("2006-01-02 15:04:05")
		resp.FinishedAt = &s
	}
	for _, st := range rec.Stores {
		resp.Stores = append(resp.Stores, StoreBreakdownResponse{
			StoreID:   st.StoreID,
			StoreName: st.StoreName,
			Quantity:  st.Quantity,
		})
	}
	return resp
}

func mapEngineError(err error) error {
	switch {
	case faults.IsValidation(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case faults.IsConfiguration(err):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
