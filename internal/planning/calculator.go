package planning

import (
	"math"

	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"
)

// LotPlan: resultado do dimensionamento de lotes para uma demanda.
// EstimatedUnits usa o rendimento realista (sem a folga); a folga só serve
// para não abrir um lote extra por causa do ruído normal da calibração.
type LotPlan struct {
	LotsNeeded     int     `json:"lots_needed"`
	FlourNeededKg  float64 `json:"flour_needed_kg"`
	EstimatedUnits int     `json:"estimated_units"`
	MassTotalKg    float64 `json:"mass_total_kg"`

	UnitsPerLot        float64 `json:"units_per_lot"`
	CapacityWithMargin float64 `json:"capacity_with_margin"`
}

// Calculate converte demanda em lotes/farinha usando a calibração vigente.
// Função pura; todo o estado (peso médio operacional) entra por parâmetro.
func Calculate(demandUnits int, massPerLotKg, avgWeightG, flourPerLotKg, marginPercent float64) (LotPlan, error) {
	if demandUnits < 0 {
		return LotPlan{}, faults.Validationf("demanda não pode ser negativa: %d", demandUnits)
	}
	// Divisão por zero aqui é erro de cadastro, nunca um "0 lotes" silencioso.
	if avgWeightG <= 0 {
		return LotPlan{}, faults.Configf("peso médio inválido (%.2fg); cadastre o peso alvo do item", avgWeightG)
	}
	if massPerLotKg <= 0 {
		return LotPlan{}, faults.Configf("massa por lote inválida (%.2fkg)", massPerLotKg)
	}
	if flourPerLotKg < 0 {
		return LotPlan{}, faults.Configf("farinha por lote inválida (%.2fkg)", flourPerLotKg)
	}
	if marginPercent < 0 {
		return LotPlan{}, faults.Configf("folga negativa (%.1f%%)", marginPercent)
	}

	unitsPerLot := massPerLotKg / (avgWeightG / 1000)
	capacity := unitsPerLot * (1 + marginPercent/100)

	plan := LotPlan{
		UnitsPerLot:        unitsPerLot,
		CapacityWithMargin: capacity,
	}
	if demandUnits == 0 {
		return plan, nil
	}

	plan.LotsNeeded = int(math.Ceil(float64(demandUnits) / capacity))
	plan.FlourNeededKg = float64(plan.LotsNeeded) * flourPerLotKg
	plan.EstimatedUnits = int(math.Floor(float64(plan.LotsNeeded) * unitsPerLot))
	plan.MassTotalKg = float64(plan.LotsNeeded) * massPerLotKg

	return plan, nil
}

// ForItem resolve o peso médio vigente do item (operacional, ou o alvo
// enquanto não existe amostra) e dimensiona a demanda.
func ForItem(item *models.PortionedItem, demandUnits int) (LotPlan, error) {
	weight := 0.0
	switch {
	case item.OperationalAvgWeightG != nil && *item.OperationalAvgWeightG > 0:
		weight = *item.OperationalAvgWeightG
	case item.TargetWeightG != nil && *item.TargetWeightG > 0:
		weight = *item.TargetWeightG
	default:
		return LotPlan{}, faults.Configf("item %q sem peso médio operacional e sem peso alvo", item.Name)
	}

	return Calculate(demandUnits, item.MassPerLotKg, weight, item.FlourPerLotKg, item.MarginPercent)
}
