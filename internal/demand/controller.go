package demand

import (
	"errors"
	"fmt"
	"time"

	"cpd-backend/internal/models"
	"cpd-backend/internal/planning"
)

// ErrDayFrozen: outro gatilho (automático ou manual) congelou o dia primeiro.
// O store devolve este erro quando o índice único de snapshot rejeita o
// insert; o controlador o transforma no resultado idempotente.
var ErrDayFrozen = errors.New("demanda do dia já congelada")

// Line: demanda pendente de uma loja por um item.
type Line struct {
	ItemID    uint
	StoreID   uint
	StoreName string
	Quantity  int
}

// Store: persistência do congelamento.
type Store interface {
	HasSnapshot(orgID uint, day time.Time) (bool, error)
	// OutstandingDemand deriva a demanda das contagens do dia (par - sobra).
	OutstandingDemand(orgID uint, day time.Time) ([]Line, error)
	// WriteFreeze grava snapshots e registros de produção numa única
	// transação: ou o dia inteiro congela, ou nada. Devolve ErrDayFrozen
	// quando perde a corrida para outro congelamento.
	WriteFreeze(orgID uint, day time.Time, snaps []models.DemandSnapshot, records []models.ProductionRecord) error
}

type ItemCatalog interface {
	ItemsByID(ids []uint) (map[uint]models.PortionedItem, error)
}

type FreezeResult struct {
	AlreadyFrozen   bool `json:"already_frozen"`
	ItemsFrozen     int  `json:"items_frozen"`
	SnapshotsFrozen int  `json:"snapshots_frozen"`
	RecordsCreated  int  `json:"records_created"`
}

type Controller struct {
	store Store
	items ItemCatalog
	now   func() time.Time
}

func NewController(store Store, items ItemCatalog) *Controller {
	return &Controller{store: store, items: items, now: time.Now}
}

// Freeze congela a demanda de (organização, dia). Idempotente: com snapshot
// já existente devolve sucesso com zero congelado. Seguro sob gatilho
// automático + manual simultâneos: a checagem de existência corta o caso
// comum e o índice único corta a janela de corrida restante.
//
// Além dos snapshots, o congelamento materializa um ProductionRecord por item
// com demanda, já dimensionado pela calibração vigente.
func (c *Controller) Freeze(orgID uint, day time.Time) (FreezeResult, error) {
	day = Normalize(day)

	has, err := c.store.HasSnapshot(orgID, day)
	if err != nil {
		return FreezeResult{}, fmt.Errorf("consulta de snapshot falhou: %w", err)
	}
	if has {
		return FreezeResult{AlreadyFrozen: true}, nil
	}

	lines, err := c.store.OutstandingDemand(orgID, day)
	if err != nil {
		return FreezeResult{}, fmt.Errorf("demanda pendente não carregada: %w", err)
	}

	frozenAt := c.now()
	snaps := make([]models.DemandSnapshot, 0, len(lines))
	perItem := make(map[uint][]Line)
	itemOrder := make([]uint, 0)
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		snaps = append(snaps, models.DemandSnapshot{
			OrganizationID: orgID,
			OperationalDay: day,
			ItemID:         l.ItemID,
			StoreID:        l.StoreID,
			Quantity:       l.Quantity,
			FrozenAt:       frozenAt,
		})
		if _, seen := perItem[l.ItemID]; !seen {
			itemOrder = append(itemOrder, l.ItemID)
		}
		perItem[l.ItemID] = append(perItem[l.ItemID], l)
	}

	// Dia sem demanda: nada a congelar, nada a produzir.
	if len(snaps) == 0 {
		return FreezeResult{}, nil
	}

	items, err := c.items.ItemsByID(itemOrder)
	if err != nil {
		return FreezeResult{}, fmt.Errorf("itens não carregados: %w", err)
	}

	records := make([]models.ProductionRecord, 0, len(itemOrder))
	for _, itemID := range itemOrder {
		item, ok := items[itemID]
		if !ok {
			return FreezeResult{}, fmt.Errorf("item %d referenciado pela demanda não existe", itemID)
		}

		total := 0
		stores := make([]models.ProductionRecordStore, 0, len(perItem[itemID]))
		for _, l := range perItem[itemID] {
			total += l.Quantity
			stores = append(stores, models.ProductionRecordStore{
				StoreID:   l.StoreID,
				StoreName: l.StoreName,
				Quantity:  l.Quantity,
			})
		}

		// Erro de cadastro em qualquer item aborta o congelamento inteiro:
		// não existe dia meio congelado.
		plan, err := planning.ForItem(&item, total)
		if err != nil {
			return FreezeResult{}, err
		}

		records = append(records, models.ProductionRecord{
			OrganizationID: orgID,
			ItemID:         itemID,
			OperationalDay: day,
			Status:         models.StatusToProduce,
			LotsPlanned:    plan.LotsNeeded,
			ExpectedUnits:  total,
			FlourNeededKg:  plan.FlourNeededKg,
			MassTotalKg:    plan.MassTotalKg,
			Stores:         stores,
		})
	}

	if err := c.store.WriteFreeze(orgID, day, snaps, records); err != nil {
		if errors.Is(err, ErrDayFrozen) {
			return FreezeResult{AlreadyFrozen: true}, nil
		}
		return FreezeResult{}, fmt.Errorf("congelamento não gravado: %w", err)
	}

	return FreezeResult{
		ItemsFrozen:     len(records),
		SnapshotsFrozen: len(snaps),
		RecordsCreated:  len(records),
	}, nil
}
