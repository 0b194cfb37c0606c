package calibration

import (
	"fmt"

	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"
	"cpd-backend/internal/notify"

	"github.com/shopspring/decimal"
)

type Settings struct {
	// Faixa de sanidade (g): amostras fora dela não entram na média móvel
	// (erro de digitação ou balança descalibrada não pode poluir o peso
	// operacional).
	SanityMinG float64
	SanityMaxG float64
	// Window: quantas amostras válidas entram na média.
	// FetchSize: quantas buscar antes do filtro (maior que Window).
	Window    int
	FetchSize int
}

// SampleStore: amostras de calibração, append-only.
type SampleStore interface {
	Append(s *models.CalibrationSample) error
	// RecentByItem retorna as amostras mais recentes primeiro.
	RecentByItem(itemID uint, limit int) ([]models.CalibrationSample, error)
	// SetNewOperationalAvg faz o back-fill da média recalculada na amostra
	// recém-criada.
	SetNewOperationalAvg(sampleID uint, avgG float64) error
}

// ItemStore: acesso ao estado de calibração compartilhado do item.
// Sem cache em memória entre requisições: o peso operacional é lido do banco
// a cada uso para não servir valor velho ao planejamento.
type ItemStore interface {
	Get(itemID uint) (*models.PortionedItem, error)
	UpdateOperationalAverage(itemID uint, avgG float64) error
}

// Outcome: números da produção finalizada que alimentam a calibração.
type Outcome struct {
	ProductionRecordID uint
	LotsProduced       int
	ExpectedUnits      int
	ActualUnits        int
	FinalWeightG       float64
	ScrapWeightG       float64
}

type Result struct {
	SampleID           uint              `json:"sample_id"`
	MassUsedG          float64           `json:"mass_used_g"`
	AvgRealWeightG     float64           `json:"avg_real_weight_g"`
	BandStatus         models.BandStatus `json:"band_status"`
	DeviationG         float64           `json:"deviation_g"`
	NewOperationalAvgG *float64          `json:"new_operational_avg_g"`
}

type Controller struct {
	samples  SampleStore
	items    ItemStore
	notifier notify.Notifier
	cfg      Settings
}

func NewController(samples SampleStore, items ItemStore, notifier notify.Notifier, cfg Settings) *Controller {
	return &Controller{samples: samples, items: items, notifier: notifier, cfg: cfg}
}

// Process roda uma vez por produção finalizada de item por lote: grava a
// amostra, classifica contra a faixa de peso e recalcula a média operacional.
//
// O recálculo é read-modify-write: duas finalizações simultâneas do MESMO item
// disputam a escrita da média. Como as duas calcularam sobre o mesmo conjunto
// append-only de amostras, vale a última; o desvio fica limitado a uma amostra
// e a próxima finalização corrige.
func (c *Controller) Process(itemID uint, out Outcome) (Result, error) {
	item, err := c.items.Get(itemID)
	if err != nil {
		return Result{}, fmt.Errorf("item %d não carregado: %w", itemID, err)
	}
	// Sem faixa cadastrada não dá para classificar: aborta sem gravar nada.
	if item.WeightBandMinG <= 0 || item.WeightBandMaxG <= 0 || item.WeightBandMinG >= item.WeightBandMaxG {
		return Result{}, faults.Configf("item %q sem faixa de peso válida (min %.0fg / max %.0fg)",
			item.Name, item.WeightBandMinG, item.WeightBandMaxG)
	}

	massUsedG := out.FinalWeightG + out.ScrapWeightG

	avgReal := 0.0
	if out.ActualUnits > 0 {
		avgReal = decimal.NewFromFloat(massUsedG).
			DivRound(decimal.NewFromInt(int64(out.ActualUnits)), 2).
			InexactFloat64()
	}

	bandStatus := models.BandWithin
	deviationG := 0.0
	switch {
	case avgReal < item.WeightBandMinG:
		bandStatus = models.BandBelow
		deviationG = round2(item.WeightBandMinG - avgReal)
	case avgReal > item.WeightBandMaxG:
		bandStatus = models.BandAbove
		deviationG = round2(avgReal - item.WeightBandMaxG)
	}

	sample := models.CalibrationSample{
		ItemID:               itemID,
		ProductionRecordID:   out.ProductionRecordID,
		LotsProduced:         out.LotsProduced,
		ExpectedUnits:        out.ExpectedUnits,
		ActualUnits:          out.ActualUnits,
		FinalWeightG:         out.FinalWeightG,
		ScrapWeightG:         out.ScrapWeightG,
		MassUsedG:            massUsedG,
		AvgRealWeightG:       avgReal,
		BandStatus:           bandStatus,
		DeviationG:           deviationG,
		PriorOperationalAvgG: item.OperationalAvgWeightG,
	}
	if err := c.samples.Append(&sample); err != nil {
		return Result{}, fmt.Errorf("amostra não gravada: %w", err)
	}

	result := Result{
		SampleID:       sample.ID,
		MassUsedG:      massUsedG,
		AvgRealWeightG: avgReal,
		BandStatus:     bandStatus,
		DeviationG:     deviationG,
	}

	newAvg, ok, err := c.recomputeAverage(itemID)
	if err != nil {
		return result, fmt.Errorf("média operacional não recalculada: %w", err)
	}
	if ok {
		if err := c.items.UpdateOperationalAverage(itemID, newAvg); err != nil {
			return result, fmt.Errorf("média operacional não gravada: %w", err)
		}
		if err := c.samples.SetNewOperationalAvg(sample.ID, newAvg); err != nil {
			return result, fmt.Errorf("back-fill da amostra falhou: %w", err)
		}
		result.NewOperationalAvgG = &newAvg
	}

	if bandStatus != models.BandWithin {
		c.alertBand(item, result)
	}

	return result, nil
}

// recomputeAverage: média aritmética das Window amostras válidas mais
// recentes, arredondada a 2 casas. Sem amostra válida, mantém a média atual
// (nunca escreve nulo por cima de um valor bom).
func (c *Controller) recomputeAverage(itemID uint) (float64, bool, error) {
	recent, err := c.samples.RecentByItem(itemID, c.cfg.FetchSize)
	if err != nil {
		return 0, false, err
	}

	valid := make([]decimal.Decimal, 0, c.cfg.Window)
	for _, s := range recent {
		if s.AvgRealWeightG < c.cfg.SanityMinG || s.AvgRealWeightG > c.cfg.SanityMaxG {
			continue
		}
		valid = append(valid, decimal.NewFromFloat(s.AvgRealWeightG))
		if len(valid) == c.cfg.Window {
			break
		}
	}
	if len(valid) == 0 {
		return 0, false, nil
	}

	avg := decimal.Avg(valid[0], valid[1:]...).Round(2).InexactFloat64()
	return avg, true, nil
}

func (c *Controller) alertBand(item *models.PortionedItem, r Result) {
	direction := "acima"
	if r.BandStatus == models.BandBelow {
		direction = "abaixo"
	}
	msg := fmt.Sprintf("Peso médio de %q fora da faixa: %.2fg (faixa %.0f–%.0fg, %.2fg %s)",
		item.Name, r.AvgRealWeightG, item.WeightBandMinG, item.WeightBandMaxG, r.DeviationG, direction)
	c.notifier.Publish(item.OrganizationID, models.AlertCalibrationBand, msg, bandAlertPayload{
		ItemID:         item.ID,
		ItemName:       item.Name,
		AvgRealWeightG: r.AvgRealWeightG,
		BandMinG:       item.WeightBandMinG,
		BandMaxG:       item.WeightBandMaxG,
		DeviationG:     r.DeviationG,
		Direction:      direction,
	})
}

type bandAlertPayload struct {
	ItemID         uint    `json:"item_id"`
	ItemName       string  `json:"item_name"`
	AvgRealWeightG float64 `json:"avg_real_weight_g"`
	BandMinG       float64 `json:"band_min_g"`
	BandMaxG       float64 `json:"band_max_g"`
	DeviationG     float64 `json:"deviation_g"`
	Direction      string  `json:"direction"`
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
