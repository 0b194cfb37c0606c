package distribution

import (
	"errors"
	"testing"
	"time"

	"cpd-backend/internal/models"
)

// --- dublês em memória ---

type fakeManifests struct {
	nextID    uint
	manifests map[uint]*models.DistributionManifest // por loja
	lines     []models.ManifestLine

	raceOnStores map[uint]bool // lojas cujo AppendLine devolve ErrDuplicateLine
	failStores   map[uint]error
}

func newFakeManifests() *fakeManifests {
	return &fakeManifests{
		nextID:       1,
		manifests:    make(map[uint]*models.DistributionManifest),
		raceOnStores: make(map[uint]bool),
		failStores:   make(map[uint]error),
	}
}

func (f *fakeManifests) LineExists(recordID, itemID uint) (bool, error) {
	for _, l := range f.lines {
		if l.ProductionRecordID == recordID && l.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeManifests) FindOrCreateAwaiting(orgID, storeID uint) (*models.DistributionManifest, bool, error) {
	if m, ok := f.manifests[storeID]; ok {
		return m, false, nil
	}
	m := &models.DistributionManifest{
		ID:             f.nextID,
		OrganizationID: orgID,
		StoreID:        storeID,
		Status:         models.ManifestAwaitingReview,
	}
	f.nextID++
	f.manifests[storeID] = m
	return m, true, nil
}

func (f *fakeManifests) AppendLine(line *models.ManifestLine) error {
	if err := f.failStores[line.StoreID]; err != nil {
		return err
	}
	if f.raceOnStores[line.StoreID] {
		return ErrDuplicateLine
	}
	for _, l := range f.lines {
		if l.ProductionRecordID == line.ProductionRecordID && l.ItemID == line.ItemID && l.StoreID == line.StoreID {
			return ErrDuplicateLine
		}
	}
	f.lines = append(f.lines, *line)
	return nil
}

func (f *fakeManifests) totalUnits() int {
	total := 0
	for _, l := range f.lines {
		total += l.Quantity
	}
	return total
}

type fakeStock struct {
	quantity int
}

func (f *fakeStock) Available(orgID, itemID uint) (int, error) {
	return f.quantity, nil
}

type fakeNotifier struct {
	kinds []models.AlertKind
}

func (f *fakeNotifier) Publish(orgID uint, kind models.AlertKind, message string, payload any) {
	f.kinds = append(f.kinds, kind)
}

func (f *fakeNotifier) has(kind models.AlertKind) bool {
	for _, k := range f.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func twoStoreInput() TriggerInput {
	return TriggerInput{
		ProductionRecordID: 7,
		OrganizationID:     1,
		ItemID:             3,
		ItemName:           "Bolinha tradicional",
		Stores: []StoreDemand{
			{StoreID: 10, StoreName: "Loja Centro", Quantity: 60},
			{StoreID: 11, StoreName: "Loja Norte", Quantity: 40},
		},
	}
}

// --- gatilho ---

func TestTriggerDefersWhenStockShort(t *testing.T) {
	manifests := newFakeManifests()
	notifier := &fakeNotifier{}
	trigger := NewTrigger(manifests, &fakeStock{quantity: 80}, notifier)

	res, err := trigger.Trigger(twoStoreInput())
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if !res.Deferred {
		t.Fatal("80 em estoque para 100 de demanda deveria adiar")
	}
	if res.ManifestsTouched != 0 || res.LinesCreated != 0 || len(manifests.lines) != 0 {
		t.Errorf("adiar não pode criar nada: %+v", res)
	}
	if !notifier.has(models.AlertDistributionDeferred) {
		t.Error("adiar deveria emitir alerta distribution_deferred")
	}
}

func TestTriggerCreatesLinesWhenStockCovers(t *testing.T) {
	manifests := newFakeManifests()
	notifier := &fakeNotifier{}
	trigger := NewTrigger(manifests, &fakeStock{quantity: 120}, notifier)

	res, err := trigger.Trigger(twoStoreInput())
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if res.Deferred {
		t.Fatal("120 em estoque cobre 100 de demanda")
	}
	if res.LinesCreated != 2 || res.ManifestsTouched != 2 {
		t.Errorf("resultado = %+v, esperado 2 linhas em 2 romaneios", res)
	}
	if got := manifests.totalUnits(); got != 100 {
		t.Errorf("unidades distribuídas = %d, esperado 100", got)
	}
	if !notifier.has(models.AlertDistributionCreated) {
		t.Error("criação deveria emitir alerta distribution_created")
	}
}

func TestTriggerRetryCreatesNothing(t *testing.T) {
	manifests := newFakeManifests()
	trigger := NewTrigger(manifests, &fakeStock{quantity: 500}, &fakeNotifier{})

	if _, err := trigger.Trigger(twoStoreInput()); err != nil {
		t.Fatalf("primeiro Trigger: %v", err)
	}
	res, err := trigger.Trigger(twoStoreInput())
	if err != nil {
		t.Fatalf("segundo Trigger: %v", err)
	}
	if !res.AlreadyDistributed || res.LinesCreated != 0 {
		t.Errorf("retry = %+v, esperado no-op já distribuído", res)
	}
	if got := manifests.totalUnits(); got != 100 {
		t.Errorf("retry dobrou a quantidade: %d unidades", got)
	}
}

func TestTriggerSwallowsDuplicateLineRace(t *testing.T) {
	// LineExists respondeu false, mas o índice único rejeitou o insert da
	// loja 10: outro gatilho criou a linha no meio do caminho.
	manifests := newFakeManifests()
	manifests.raceOnStores[10] = true
	trigger := NewTrigger(manifests, &fakeStock{quantity: 500}, &fakeNotifier{})

	res, err := trigger.Trigger(twoStoreInput())
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if len(res.StoreErrors) != 0 {
		t.Errorf("linha duplicada é 'já feito', não erro: %+v", res.StoreErrors)
	}
	if res.LinesCreated != 1 {
		t.Errorf("linhas criadas = %d, esperado 1 (só a loja 11)", res.LinesCreated)
	}
}

func TestTriggerIsolatesPerStoreFailure(t *testing.T) {
	manifests := newFakeManifests()
	manifests.failStores[10] = errors.New("conexão recusada")
	trigger := NewTrigger(manifests, &fakeStock{quantity: 500}, &fakeNotifier{})

	res, err := trigger.Trigger(twoStoreInput())
	if err != nil {
		t.Fatalf("falha de uma loja não pode derrubar a chamada: %v", err)
	}
	if res.LinesCreated != 1 {
		t.Errorf("linhas criadas = %d, esperado 1 (loja 11 segue)", res.LinesCreated)
	}
	if res.StoreErrors[10] == "" {
		t.Error("falha da loja 10 deveria constar no resultado")
	}
}

func TestTriggerEmptyBreakdownIsNoop(t *testing.T) {
	manifests := newFakeManifests()
	trigger := NewTrigger(manifests, &fakeStock{quantity: 500}, &fakeNotifier{})

	in := twoStoreInput()
	in.Stores = []StoreDemand{{StoreID: 10, StoreName: "Loja Centro", Quantity: 0}}

	res, err := trigger.Trigger(in)
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if res.Deferred || res.LinesCreated != 0 || len(manifests.lines) != 0 {
		t.Errorf("quebra vazia deveria ser no-op: %+v", res)
	}
}

// --- varredura de reconciliação ---

type fakeScanner struct {
	pending []TriggerInput
}

func (f *fakeScanner) PendingSince(orgID uint, since time.Time) ([]TriggerInput, error) {
	return f.pending, nil
}

func TestSweepDistributesAfterRestock(t *testing.T) {
	manifests := newFakeManifests()
	stockRow := &fakeStock{quantity: 80}
	trigger := NewTrigger(manifests, stockRow, &fakeNotifier{})

	// finalização na hora: estoque insuficiente, adiada
	res, err := trigger.Trigger(twoStoreInput())
	if err != nil || !res.Deferred {
		t.Fatalf("setup: esperado adiamento, veio %+v / %v", res, err)
	}

	// reposição e varredura
	stockRow.quantity = 150
	sweep := NewSweep(&fakeScanner{pending: []TriggerInput{twoStoreInput()}}, trigger, 2)

	swept, err := sweep.Run(1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if swept.RecordsDistributed != 1 || swept.LinesCreated != 2 {
		t.Errorf("varredura = %+v, esperado 1 produção distribuída em 2 linhas", swept)
	}
	if got := manifests.totalUnits(); got != 100 {
		t.Errorf("unidades distribuídas = %d, esperado 100", got)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	manifests := newFakeManifests()
	trigger := NewTrigger(manifests, &fakeStock{quantity: 500}, &fakeNotifier{})
	sweep := NewSweep(&fakeScanner{pending: []TriggerInput{twoStoreInput()}}, trigger, 2)

	if _, err := sweep.Run(1); err != nil {
		t.Fatalf("primeira varredura: %v", err)
	}
	second, err := sweep.Run(1)
	if err != nil {
		t.Fatalf("segunda varredura: %v", err)
	}
	if second.RecordsDistributed != 0 || second.LinesCreated != 0 {
		t.Errorf("segunda varredura = %+v, esperado nada novo", second)
	}
	if got := manifests.totalUnits(); got != 100 {
		t.Errorf("varredura repetida dobrou a quantidade: %d unidades", got)
	}
}

func TestSweepCountsDeferredRecords(t *testing.T) {
	trigger := NewTrigger(newFakeManifests(), &fakeStock{quantity: 10}, &fakeNotifier{})
	sweep := NewSweep(&fakeScanner{pending: []TriggerInput{twoStoreInput()}}, trigger, 2)

	res, err := sweep.Run(1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RecordsDeferred != 1 || res.RecordsDistributed != 0 {
		t.Errorf("varredura = %+v, esperado 1 produção ainda adiada", res)
	}
}
