package demand

import (
	"errors"
	"testing"
	"time"

	"cpd-backend/internal/faults"
	"cpd-backend/internal/models"
)

// --- dublês em memória ---

type fakeStore struct {
	lines []Line

	snaps   []models.DemandSnapshot
	records []models.ProductionRecord

	failWrite   error
	raceOnWrite bool // simula outro congelamento vencendo entre o check e o insert
	demandErr   error
}

func (f *fakeStore) HasSnapshot(orgID uint, day time.Time) (bool, error) {
	return len(f.snaps) > 0, nil
}

func (f *fakeStore) OutstandingDemand(orgID uint, day time.Time) ([]Line, error) {
	if f.demandErr != nil {
		return nil, f.demandErr
	}
	return f.lines, nil
}

func (f *fakeStore) WriteFreeze(orgID uint, day time.Time, snaps []models.DemandSnapshot, records []models.ProductionRecord) error {
	if f.raceOnWrite {
		return ErrDayFrozen
	}
	if f.failWrite != nil {
		return f.failWrite
	}
	f.snaps = append(f.snaps, snaps...)
	f.records = append(f.records, records...)
	return nil
}

type fakeCatalog struct {
	items map[uint]models.PortionedItem
}

func (f *fakeCatalog) ItemsByID(ids []uint) (map[uint]models.PortionedItem, error) {
	return f.items, nil
}

func calibratedItem(id uint, avgG float64) models.PortionedItem {
	return models.PortionedItem{
		ID:                    id,
		OrganizationID:        1,
		Name:                  "Bolinha tradicional",
		LotBased:              true,
		WeightBandMinG:        45,
		WeightBandMaxG:        55,
		OperationalAvgWeightG: &avgG,
		FlourPerLotKg:         6,
		MassPerLotKg:          10,
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// --- testes ---

func TestFreezeCreatesSnapshotsAndRecords(t *testing.T) {
	store := &fakeStore{lines: []Line{
		{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 250},
		{ItemID: 1, StoreID: 11, StoreName: "Loja Norte", Quantity: 200},
	}}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: calibratedItem(1, 50)}}
	ctrl := NewController(store, catalog)

	res, err := ctrl.Freeze(1, day("2025-12-09"))
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if res.AlreadyFrozen {
		t.Fatal("primeiro congelamento não pode vir como já congelado")
	}
	if res.SnapshotsFrozen != 2 || res.ItemsFrozen != 1 {
		t.Errorf("congelados: %d snapshots / %d itens, esperado 2 / 1", res.SnapshotsFrozen, res.ItemsFrozen)
	}
	if len(store.records) != 1 {
		t.Fatalf("registros de produção = %d, esperado 1", len(store.records))
	}

	rec := store.records[0]
	if rec.Status != models.StatusToProduce {
		t.Errorf("status inicial = %s, esperado to_produce", rec.Status)
	}
	if rec.ExpectedUnits != 450 {
		t.Errorf("ExpectedUnits = %d, esperado 450", rec.ExpectedUnits)
	}
	// 450 unidades com 200 por lote => 3 lotes, 18kg de farinha
	if rec.LotsPlanned != 3 {
		t.Errorf("LotsPlanned = %d, esperado 3", rec.LotsPlanned)
	}
	if rec.FlourNeededKg != 18 {
		t.Errorf("FlourNeededKg = %v, esperado 18", rec.FlourNeededKg)
	}
	if len(rec.Stores) != 2 {
		t.Errorf("quebra por loja = %d lojas, esperado 2", len(rec.Stores))
	}
}

func TestFreezeIsIdempotent(t *testing.T) {
	store := &fakeStore{lines: []Line{{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 100}}}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: calibratedItem(1, 50)}}
	ctrl := NewController(store, catalog)

	first, err := ctrl.Freeze(1, day("2025-12-09"))
	if err != nil {
		t.Fatalf("primeiro Freeze: %v", err)
	}
	if first.SnapshotsFrozen == 0 {
		t.Fatal("primeiro congelamento deveria gravar snapshots")
	}

	second, err := ctrl.Freeze(1, day("2025-12-09"))
	if err != nil {
		t.Fatalf("segundo Freeze: %v", err)
	}
	if !second.AlreadyFrozen || second.SnapshotsFrozen != 0 {
		t.Errorf("segundo congelamento = %+v, esperado no-op já congelado", second)
	}
	if len(store.snaps) != 1 {
		t.Errorf("snapshots no store = %d, esperado 1 (inalterado)", len(store.snaps))
	}
}

func TestFreezeLosingRaceIsNotAnError(t *testing.T) {
	// HasSnapshot ainda respondeu false, mas o índice único rejeitou o insert:
	// o gatilho concorrente congelou primeiro.
	store := &fakeStore{
		lines:       []Line{{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 100}},
		raceOnWrite: true,
	}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: calibratedItem(1, 50)}}
	ctrl := NewController(store, catalog)

	res, err := ctrl.Freeze(1, day("2025-12-09"))
	if err != nil {
		t.Fatalf("Freeze perdendo a corrida não pode dar erro: %v", err)
	}
	if !res.AlreadyFrozen {
		t.Errorf("resultado = %+v, esperado já congelado", res)
	}
}

func TestFreezeWithNoDemandWritesNothing(t *testing.T) {
	store := &fakeStore{lines: []Line{{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 0}}}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: calibratedItem(1, 50)}}
	ctrl := NewController(store, catalog)

	res, err := ctrl.Freeze(1, day("2025-12-09"))
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if res.SnapshotsFrozen != 0 || res.ItemsFrozen != 0 {
		t.Errorf("resultado = %+v, esperado nada congelado", res)
	}
	if len(store.snaps) != 0 || len(store.records) != 0 {
		t.Error("dia sem demanda não pode gravar snapshot nem registro")
	}
}

func TestFreezeAbortsWholeDayOnConfigurationError(t *testing.T) {
	// Dois itens; o segundo sem peso médio nem alvo. O dia inteiro aborta:
	// não existe congelamento parcial.
	itemOK := calibratedItem(1, 50)
	itemBroken := models.PortionedItem{ID: 2, OrganizationID: 1, Name: "Bolinha integral", LotBased: true, FlourPerLotKg: 6, MassPerLotKg: 10}

	store := &fakeStore{lines: []Line{
		{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 100},
		{ItemID: 2, StoreID: 10, StoreName: "Loja Centro", Quantity: 100},
	}}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: itemOK, 2: itemBroken}}
	ctrl := NewController(store, catalog)

	_, err := ctrl.Freeze(1, day("2025-12-09"))
	if !faults.IsConfiguration(err) {
		t.Fatalf("esperado ConfigurationError, veio %v", err)
	}
	if len(store.snaps) != 0 || len(store.records) != 0 {
		t.Error("congelamento parcial gravado após erro de cadastro")
	}
}

func TestFreezeSurfacesStoreFailureForRetry(t *testing.T) {
	storeErr := errors.New("conexão recusada")
	store := &fakeStore{
		lines:     []Line{{ItemID: 1, StoreID: 10, StoreName: "Loja Centro", Quantity: 100}},
		failWrite: storeErr,
	}
	catalog := &fakeCatalog{items: map[uint]models.PortionedItem{1: calibratedItem(1, 50)}}
	ctrl := NewController(store, catalog)

	_, err := ctrl.Freeze(1, day("2025-12-09"))
	if err == nil || !errors.Is(err, storeErr) {
		t.Fatalf("falha do store deve subir para retry, veio %v", err)
	}
}

func TestComputeStatus(t *testing.T) {
	at := func(hhmm string) time.Time {
		parsed, _ := time.Parse("2006-01-02 15:04", "2025-12-09 "+hhmm)
		return parsed
	}

	tests := []struct {
		name        string
		now         time.Time
		cutoff      string
		hasSnapshot bool
		want        Status
	}{
		{"antes do corte", at("02:59"), "03:00", false, StatusOpen},
		{"no corte exato", at("03:00"), "03:00", false, StatusPastCutoffPending},
		{"depois do corte", at("04:30"), "03:00", false, StatusPastCutoffPending},
		{"congelado vence o horário", at("01:00"), "03:00", true, StatusFrozen},
		{"corte tarde da noite", at("22:00"), "23:30", false, StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStatus(tt.now, tt.cutoff, tt.hasSnapshot); got != tt.want {
				t.Errorf("ComputeStatus = %s, esperado %s", got, tt.want)
			}
		})
	}
}

func TestCurrentOperationalDay(t *testing.T) {
	before, _ := time.Parse("2006-01-02 15:04", "2025-12-09 02:00")
	after, _ := time.Parse("2006-01-02 15:04", "2025-12-09 05:00")

	if got := CurrentOperationalDay(before, "03:00"); got.Format("2006-01-02") != "2025-12-09" {
		t.Errorf("antes do corte: dia aberto = %s, esperado 2025-12-09", got.Format("2006-01-02"))
	}
	if got := CurrentOperationalDay(after, "03:00"); got.Format("2006-01-02") != "2025-12-10" {
		t.Errorf("depois do corte: dia aberto = %s, esperado 2025-12-10", got.Format("2006-01-02"))
	}
}
