package demand

import (
	"fmt"
	"time"

	"cpd-backend/internal/audit"
	"cpd-backend/internal/database"
	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SubmitCountRequest struct {
	StoreID        uint   `json:"store_id"`
	ItemID         uint   `json:"item_id"`
	OperationalDay string `json:"operational_day"` // "2025-12-09"
	FinalLeftover  int    `json:"final_leftover"`
}

// POST /api/counts
// Contagem final da loja. Upsert até o corte; depois do congelamento o dia é
// imutável e a contagem é rejeitada.
func SubmitCountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitCountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.StoreID == 0 || body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "store_id e item_id são obrigatórios")
		}
		if body.FinalLeftover < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "final_leftover não pode ser negativo")
		}

		day, err := time.Parse("2006-01-02", body.OperationalDay)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "operational_day deve ser 'YYYY-MM-DD'")
		}
		day = Normalize(day)

		var store models.Store
		if err := database.DB.First(&store, "id = ?", body.StoreID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Loja não encontrada")
		}
		var item models.PortionedItem
		if err := database.DB.First(&item, "id = ?", body.ItemID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Item não encontrado")
		}

		// Dia congelado é imutável: snapshot manda.
		var frozen int64
		database.DB.Model(&models.DemandSnapshot{}).
			Where("organization_id = ? AND operational_day = ?", store.OrganizationID, day).
			Count(&frozen)
		if frozen > 0 {
			return fiber.NewError(fiber.StatusConflict, "Demanda do dia já congelada; contagem não pode mais ser alterada")
		}

		var count models.DailyCount
		err = database.DB.
			Where("store_id = ? AND item_id = ? AND operational_day = ?", body.StoreID, body.ItemID, day).
			First(&count).Error
		if err == nil {
			before := count
			count.FinalLeftover = body.FinalLeftover
			if err := database.DB.Save(&count).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Contagem não atualizada")
			}
			_ = audit.WriteLog(audit.LogOptions{
				OrganizationID: &store.OrganizationID,
				EntityType:     "daily_count",
				EntityID:       count.ID,
				Action:         models.AuditActionUpdate,
				Description:    fmt.Sprintf("Contagem %s / %s: sobra %d", store.Name, item.Name, body.FinalLeftover),
				Before:         before,
				After:          count,
			})
			return c.JSON(count)
		}

		count = models.DailyCount{
			StoreID:        body.StoreID,
			ItemID:         body.ItemID,
			OperationalDay: day,
			FinalLeftover:  body.FinalLeftover,
		}
		if err := database.DB.Create(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Contagem não gravada")
		}
		_ = audit.WriteLog(audit.LogOptions{
			OrganizationID: &store.OrganizationID,
			EntityType:     "daily_count",
			EntityID:       count.ID,
			Action:         models.AuditActionCreate,
			Description:    fmt.Sprintf("Contagem %s / %s: sobra %d", store.Name, item.Name, body.FinalLeftover),
			After:          count,
		})
		return c.Status(fiber.StatusCreated).JSON(count)
	}
}

type SetParRequest struct {
	StoreID  uint `json:"store_id"`
	ItemID   uint `json:"item_id"`
	ParLevel int  `json:"par_level"`
}

// PUT /api/pars
// Estoque ideal diário (par) de um item em uma loja.
func SetParHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetParRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.StoreID == 0 || body.ItemID == 0 || body.ParLevel < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "store_id, item_id e par_level >= 0 são obrigatórios")
		}

		var par models.StoreItemPar
		err := database.DB.
			Where("store_id = ? AND item_id = ?", body.StoreID, body.ItemID).
			First(&par).Error
		if err == nil {
			par.ParLevel = body.ParLevel
			if err := database.DB.Save(&par).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Par não atualizado")
			}
			return c.JSON(par)
		}

		par = models.StoreItemPar{StoreID: body.StoreID, ItemID: body.ItemID, ParLevel: body.ParLevel}
		if err := database.DB.Create(&par).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Par não gravado")
		}
		return c.Status(fiber.StatusCreated).JSON(par)
	}
}

// GET /api/demand/status?organization_id=&day=
// Situação do dia no fuso da CPD. Quando observa past_cutoff_pending, tenta o
// congelamento na hora; a idempotência do Freeze torna a tentativa segura em
// qualquer frequência, então não há trava de sessão.
func DemandStatusHandler(ctrl *Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := loadOrg(c.QueryInt("organization_id"))
		if err != nil {
			return err
		}

		loc, err := time.LoadLocation(org.Timezone)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity,
				fmt.Sprintf("Fuso horário inválido na organização: %s", org.Timezone))
		}
		nowLocal := time.Now().In(loc)

		day := Normalize(nowLocal)
		if dayStr := c.Query("day"); dayStr != "" {
			parsed, err := time.Parse("2006-01-02", dayStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "day deve ser 'YYYY-MM-DD'")
			}
			day = Normalize(parsed)
		}

		has, err := ctrl.store.HasSnapshot(org.ID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Consulta de snapshot falhou")
		}

		status := ComputeStatus(nowLocal, org.CutoffTime, has)
		if day.Before(Normalize(nowLocal)) && !has {
			// dia passado nunca volta a ficar aberto
			status = StatusPastCutoffPending
		}

		resp := fiber.Map{
			"organization_id": org.ID,
			"day":             day.Format("2006-01-02"),
			"cutoff_time":     org.CutoffTime,
			"status":          status,
			"open_day":        CurrentOperationalDay(nowLocal, org.CutoffTime).Format("2006-01-02"),
		}

		if status == StatusPastCutoffPending {
			result, err := ctrl.Freeze(org.ID, day)
			if err != nil {
				// congelamento automático falhou: mantém pendente e expõe o
				// motivo para o retry (manual ou o próximo status)
				resp["freeze_error"] = err.Error()
				return c.JSON(resp)
			}
			if result.AlreadyFrozen || result.SnapshotsFrozen > 0 {
				resp["status"] = StatusFrozen
			}
			resp["freeze_result"] = result
		}

		return c.JSON(resp)
	}
}

type FreezeRequest struct {
	OrganizationID uint   `json:"organization_id"`
	Day            string `json:"day"` // vazio = dia atual no fuso da CPD
}

// POST /api/demand/freeze
// "Congelar agora" manual; sempre disponível, sem trava.
func FreezeHandler(ctrl *Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FreezeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		org, err := loadOrg(int(body.OrganizationID))
		if err != nil {
			return err
		}

		var day time.Time
		if body.Day != "" {
			parsed, err := time.Parse("2006-01-02", body.Day)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "day deve ser 'YYYY-MM-DD'")
			}
			day = Normalize(parsed)
		} else {
			loc, err := time.LoadLocation(org.Timezone)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					fmt.Sprintf("Fuso horário inválido na organização: %s", org.Timezone))
			}
			day = Normalize(time.Now().In(loc))
		}

		result, err := ctrl.Freeze(org.ID, day)
		if err != nil {
			if faults.IsConfiguration(err) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if !result.AlreadyFrozen && result.SnapshotsFrozen > 0 {
			_ = audit.WriteLog(audit.LogOptions{
				OrganizationID: &org.ID,
				EntityType:     "demand_snapshot",
				EntityID:       0,
				Action:         models.AuditActionFreeze,
				Description: fmt.Sprintf("Demanda de %s congelada: %d itens, %d snapshots",
					day.Format("2006-01-02"), result.ItemsFrozen, result.SnapshotsFrozen),
				After: result,
			})
		}

		return c.JSON(result)
	}
}

type SnapshotResponse struct {
	ID             uint   `json:"id"`
	OperationalDay string `json:"operational_day"`
	ItemID         uint   `json:"item_id"`
	ItemName       string `json:"item_name"`
	StoreID        uint   `json:"store_id"`
	StoreName      string `json:"store_name"`
	Quantity       int    `json:"quantity"`
	FrozenAt       string `json:"frozen_at"`
}

// GET /api/demand/snapshots?organization_id=&day=
func ListSnapshotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := loadOrg(c.QueryInt("organization_id"))
		if err != nil {
			return err
		}

		dayStr := c.Query("day")
		if dayStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "day obrigatório")
		}
		day, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "day deve ser 'YYYY-MM-DD'")
		}

		var snaps []models.DemandSnapshot
		if err := database.DB.
			Preload("Item").
			Preload("Store").
			Where("organization_id = ? AND operational_day = ?", org.ID, Normalize(day)).
			Order("item_id, store_id").
			Find(&snaps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Snapshots não puderam ser listados")
		}

		resp := make([]SnapshotResponse, 0, len(snaps))
		for _, s := range snaps {
			resp = append(resp, SnapshotResponse{
				ID:             s.ID,
				OperationalDay: s.OperationalDay.Format("2006-01-02"),
				ItemID:         s.ItemID,
				ItemName:       s.Item.Name,
				StoreID:        s.StoreID,
				StoreName:      s.Store.Name,
				Quantity:       s.Quantity,
				FrozenAt:       s.FrozenAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

func loadOrg(id int) (*models.Organization, error) {
	if id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "organization_id obrigatório")
	}
	var org models.Organization
	if err := database.DB.First(&org, "id = ?", id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Organização não encontrada")
	}
	return &org, nil
}
