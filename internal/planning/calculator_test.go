package planning

import (
	"testing"

	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		demand        int
		massPerLotKg  float64
		avgWeightG    float64
		flourPerLotKg float64
		margin        float64

		wantLots      int
		wantFlourKg   float64
		wantEstimated int
		wantMassKg    float64
	}{
		{
			name:   "demanda exige tres lotes sem folga",
			demand: 450, massPerLotKg: 10, avgWeightG: 50, flourPerLotKg: 6, margin: 0,
			wantLots: 3, wantFlourKg: 18, wantEstimated: 600, wantMassKg: 30,
		},
		{
			name:   "folga de 15 por cento evita o terceiro lote",
			demand: 450, massPerLotKg: 10, avgWeightG: 50, flourPerLotKg: 6, margin: 15,
			wantLots: 2, wantFlourKg: 12, wantEstimated: 400, wantMassKg: 20,
		},
		{
			name:   "demanda igual a capacidade de um lote",
			demand: 200, massPerLotKg: 10, avgWeightG: 50, flourPerLotKg: 6, margin: 0,
			wantLots: 1, wantFlourKg: 6, wantEstimated: 200, wantMassKg: 10,
		},
		{
			name:   "demanda zero nao abre lote",
			demand: 0, massPerLotKg: 10, avgWeightG: 50, flourPerLotKg: 6, margin: 0,
			wantLots: 0, wantFlourKg: 0, wantEstimated: 0, wantMassKg: 0,
		},
		{
			name:   "uma unidade abre um lote",
			demand: 1, massPerLotKg: 10, avgWeightG: 50, flourPerLotKg: 6, margin: 0,
			wantLots: 1, wantFlourKg: 6, wantEstimated: 200, wantMassKg: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Calculate(tt.demand, tt.massPerLotKg, tt.avgWeightG, tt.flourPerLotKg, tt.margin)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if plan.LotsNeeded != tt.wantLots {
				t.Errorf("LotsNeeded = %d, esperado %d", plan.LotsNeeded, tt.wantLots)
			}
			if plan.FlourNeededKg != tt.wantFlourKg {
				t.Errorf("FlourNeededKg = %v, esperado %v", plan.FlourNeededKg, tt.wantFlourKg)
			}
			if plan.EstimatedUnits != tt.wantEstimated {
				t.Errorf("EstimatedUnits = %d, esperado %d", plan.EstimatedUnits, tt.wantEstimated)
			}
			if plan.MassTotalKg != tt.wantMassKg {
				t.Errorf("MassTotalKg = %v, esperado %v", plan.MassTotalKg, tt.wantMassKg)
			}
		})
	}
}

func TestCalculateUnitsPerLot(t *testing.T) {
	plan, err := Calculate(0, 10, 50, 6, 0)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if plan.UnitsPerLot != 200 {
		t.Errorf("UnitsPerLot = %v, esperado 200", plan.UnitsPerLot)
	}

	plan, err = Calculate(0, 10, 50, 6, 15)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// 200 * 1.15; tolerância de float
	if plan.CapacityWithMargin < 229.9999 || plan.CapacityWithMargin > 230.0001 {
		t.Errorf("CapacityWithMargin = %v, esperado ~230", plan.CapacityWithMargin)
	}
}

func TestCalculateConfigurationErrors(t *testing.T) {
	// Divisão por zero é erro de cadastro, nunca resultado silencioso.
	if _, err := Calculate(100, 10, 0, 6, 0); !faults.IsConfiguration(err) {
		t.Errorf("peso médio zero: esperado ConfigurationError, veio %v", err)
	}
	if _, err := Calculate(100, 0, 50, 6, 0); !faults.IsConfiguration(err) {
		t.Errorf("massa por lote zero: esperado ConfigurationError, veio %v", err)
	}
	if _, err := Calculate(-1, 10, 50, 6, 0); !faults.IsValidation(err) {
		t.Errorf("demanda negativa: esperado ValidationError, veio %v", err)
	}
}

func TestForItemWeightFallback(t *testing.T) {
	target := 50.0
	operational := 48.0

	item := &models.PortionedItem{
		Name:          "Bolinha tradicional",
		MassPerLotKg:  10,
		FlourPerLotKg: 6,
		TargetWeightG: &target,
	}

	// Sem amostra ainda: usa o peso alvo.
	plan, err := ForItem(item, 200)
	if err != nil {
		t.Fatalf("ForItem com peso alvo: %v", err)
	}
	if plan.LotsNeeded != 1 {
		t.Errorf("LotsNeeded = %d, esperado 1", plan.LotsNeeded)
	}

	// Com média operacional, ela vence o alvo.
	item.OperationalAvgWeightG = &operational
	plan, err = ForItem(item, 200)
	if err != nil {
		t.Fatalf("ForItem com média operacional: %v", err)
	}
	if plan.UnitsPerLot <= 200 {
		t.Errorf("UnitsPerLot = %v, esperado > 200 com peso médio menor", plan.UnitsPerLot)
	}

	// Nenhum dos dois: erro de cadastro.
	item.OperationalAvgWeightG = nil
	item.TargetWeightG = nil
	if _, err := ForItem(item, 200); !faults.IsConfiguration(err) {
		t.Errorf("item sem peso: esperado ConfigurationError, veio %v", err)
	}
}
