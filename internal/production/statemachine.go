package production

import (
	"fmt"
	"math"
	"time"

	"cpd-backend/internal/calibration"
	"cpd-backend/internal/distribution"
	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"
	"cpd-backend/internal/notify"
	"cpd-backend/internal/planning"
)

// RecordStore: persistência dos registros de produção. As escritas de
// transição são condicionais ("só se o status ainda for X") para que duas
// chamadas simultâneas nunca avancem ou finalizem o mesmo registro duas vezes.
type RecordStore interface {
	Get(id uint) (*models.ProductionRecord, error)
	// AdvanceStatus grava `to` apenas se o status atual for `from`.
	// Devolve false quando outra chamada mudou o registro antes.
	AdvanceStatus(id uint, from, to models.ProductionStatus) (bool, error)
	// Finalize grava o resultado, marca finished e credita o estoque central
	// numa única transação, apenas se o registro ainda estiver em in_portioning.
	Finalize(rec *models.ProductionRecord, finishedAt time.Time) (bool, error)
	AddExpectedUnits(id uint, extra int) error
}

type ItemCatalog interface {
	Get(itemID uint) (*models.PortionedItem, error)
}

// Calibrator: calibração pós-produção (itens por lote).
type Calibrator interface {
	Process(itemID uint, out calibration.Outcome) (calibration.Result, error)
}

// Distributor: gatilho de romaneio após a finalização.
type Distributor interface {
	Trigger(in distribution.TriggerInput) (distribution.TriggerResult, error)
}

type FinalizeInput struct {
	LotsProduced int
	ActualUnits  int
	FinalWeightG float64
	ScrapWeightG float64
}

// FinalizeResult: a finalização em si mais o que aconteceu depois dela.
// Calibração e distribuição rodam com o registro JÁ finalizado; uma falha
// nelas não desfaz a finalização, então vem relatada aqui em vez de erro.
type FinalizeResult struct {
	AlreadyFinished bool                        `json:"already_finished"`
	Record          *models.ProductionRecord    `json:"record,omitempty"`
	Calibration     *calibration.Result         `json:"calibration,omitempty"`
	CalibrationErr  string                      `json:"calibration_error,omitempty"`
	Distribution    *distribution.TriggerResult `json:"distribution,omitempty"`
	DistributionErr string                      `json:"distribution_error,omitempty"`
}

type ExtraResult struct {
	RecordID           uint   `json:"record_id"`
	Reason             string `json:"reason"`
	ExpectedUnits      int    `json:"expected_units"`
	CoverageUnits      int    `json:"coverage_units"`
	Shortfall          bool   `json:"shortfall"`
	ShortfallUnits     int    `json:"shortfall_units"`
	SuggestedExtraLots int    `json:"suggested_extra_lots"`
}

type Engine struct {
	records     RecordStore
	items       ItemCatalog
	calibrator  Calibrator
	distributor Distributor
	notifier    notify.Notifier
	now         func() time.Time
}

func NewEngine(records RecordStore, items ItemCatalog, calibrator Calibrator, distributor Distributor, notifier notify.Notifier) *Engine {
	return &Engine{
		records:     records,
		items:       items,
		calibrator:  calibrator,
		distributor: distributor,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Advance move o registro um passo na linha to_produce → in_prep →
// in_portioning. O último passo (→ finished) só existe via Finalize, que
// exige os números da produção.
func (e *Engine) Advance(recordID uint) (*models.ProductionRecord, error) {
	rec, err := e.records.Get(recordID)
	if err != nil {
		return nil, err
	}

	next, ok := models.NextStatus(rec.Status)
	if !ok {
		return nil, faults.Validationf("registro %d já está finalizado", recordID)
	}
	if next == models.StatusFinished {
		return nil, faults.Validationf("registro %d em porcionamento: finalize informando unidades e pesos", recordID)
	}

	moved, err := e.records.AdvanceStatus(recordID, rec.Status, next)
	if err != nil {
		return nil, fmt.Errorf("transição não gravada: %w", err)
	}
	if !moved {
		// outra chamada avançou primeiro
		return nil, faults.Validationf("registro %d mudou de status durante a chamada; recarregue", recordID)
	}

	rec.Status = next
	return rec, nil
}

// Finalize fecha o registro e dispara o pós-produção: calibração (se o item é
// por lote) e o gatilho de distribuição, nessa ordem. Finalização repetida é
// um no-op relatado como AlreadyFinished, não um erro.
func (e *Engine) Finalize(recordID uint, in FinalizeInput) (FinalizeResult, error) {
	if in.ActualUnits <= 0 {
		return FinalizeResult{}, faults.Validationf("actual_units deve ser maior que zero")
	}
	if in.LotsProduced <= 0 {
		return FinalizeResult{}, faults.Validationf("lots_produced deve ser maior que zero")
	}
	if in.FinalWeightG < 0 || in.ScrapWeightG < 0 {
		return FinalizeResult{}, faults.Validationf("pesos não podem ser negativos")
	}

	rec, err := e.records.Get(recordID)
	if err != nil {
		return FinalizeResult{}, err
	}
	if rec.Status == models.StatusFinished {
		return FinalizeResult{AlreadyFinished: true}, nil
	}
	if rec.Status != models.StatusInPortioning {
		return FinalizeResult{}, faults.Validationf(
			"registro %d está em %s; só finaliza a partir de in_portioning", recordID, rec.Status)
	}

	item, err := e.items.Get(rec.ItemID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("item %d não carregado: %w", rec.ItemID, err)
	}

	finishedAt := e.now()
	rec.LotsProduced = in.LotsProduced
	rec.ActualUnits = in.ActualUnits
	rec.FinalWeightKg = in.FinalWeightG / 1000
	rec.ScrapWeightKg = in.ScrapWeightG / 1000

	done, err := e.records.Finalize(rec, finishedAt)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("finalização não gravada: %w", err)
	}
	if !done {
		// a escrita condicional perdeu a corrida para outra finalização
		return FinalizeResult{AlreadyFinished: true}, nil
	}
	rec.Status = models.StatusFinished
	rec.FinishedAt = &finishedAt

	result := FinalizeResult{Record: rec}

	if item.LotBased {
		calRes, err := e.calibrator.Process(rec.ItemID, calibration.Outcome{
			ProductionRecordID: rec.ID,
			LotsProduced:       in.LotsProduced,
			ExpectedUnits:      rec.ExpectedUnits,
			ActualUnits:        in.ActualUnits,
			FinalWeightG:       in.FinalWeightG,
			ScrapWeightG:       in.ScrapWeightG,
		})
		if err != nil {
			result.CalibrationErr = err.Error()
		} else {
			result.Calibration = &calRes
		}
	}

	distRes, err := e.distributor.Trigger(triggerInputFor(rec, item))
	if err != nil {
		result.DistributionErr = err.Error()
	} else {
		result.Distribution = &distRes
	}

	return result, nil
}

// RequestExtra registra um pedido de produção extra: soma em expectedUnits e
// recalcula a cobertura do plano atual. Nunca cria lote sozinho; quando os
// lotes planejados não cobrem o novo total, sinaliza o déficit e sugere
// quantos lotes extras resolveriam.
func (e *Engine) RequestExtra(recordID uint, extraUnits int, reason string) (ExtraResult, error) {
	if extraUnits <= 0 {
		return ExtraResult{}, faults.Validationf("extra_units deve ser maior que zero")
	}

	rec, err := e.records.Get(recordID)
	if err != nil {
		return ExtraResult{}, err
	}
	if rec.Status == models.StatusFinished {
		return ExtraResult{}, faults.Validationf("registro %d já finalizado; produção extra exige novo registro", recordID)
	}

	item, err := e.items.Get(rec.ItemID)
	if err != nil {
		return ExtraResult{}, fmt.Errorf("item %d não carregado: %w", rec.ItemID, err)
	}

	if err := e.records.AddExpectedUnits(recordID, extraUnits); err != nil {
		return ExtraResult{}, fmt.Errorf("unidades extras não gravadas: %w", err)
	}
	newExpected := rec.ExpectedUnits + extraUnits

	plan, err := planning.ForItem(item, newExpected)
	if err != nil {
		return ExtraResult{}, err
	}

	coverage := int(math.Floor(float64(rec.LotsPlanned) * plan.UnitsPerLot))
	result := ExtraResult{
		RecordID:      recordID,
		Reason:        reason,
		ExpectedUnits: newExpected,
		CoverageUnits: coverage,
	}

	if newExpected > coverage {
		result.Shortfall = true
		result.ShortfallUnits = newExpected - coverage
		if extra := plan.LotsNeeded - rec.LotsPlanned; extra > 0 {
			result.SuggestedExtraLots = extra
		}
		e.notifier.Publish(rec.OrganizationID, models.AlertProductionShortfall,
			fmt.Sprintf("Produção planejada de %q não cobre o pedido extra: %d planejadas para %d esperadas (faltam %d; +%d lote(s) resolveriam)",
				item.Name, coverage, newExpected, result.ShortfallUnits, result.SuggestedExtraLots),
			result)
	}

	return result, nil
}

func triggerInputFor(rec *models.ProductionRecord, item *models.PortionedItem) distribution.TriggerInput {
	stores := make([]distribution.StoreDemand, 0, len(rec.Stores))
	for _, s := range rec.Stores {
		stores = append(stores, distribution.StoreDemand{
			StoreID:   s.StoreID,
			StoreName: s.StoreName,
			Quantity:  s.Quantity,
		})
	}
	return distribution.TriggerInput{
		ProductionRecordID: rec.ID,
		OrganizationID:     rec.OrganizationID,
		ItemID:             rec.ItemID,
		ItemName:           item.Name,
		Stores:             stores,
	}
}
