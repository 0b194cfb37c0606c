package demand

import (
	"errors"
	"sort"
	"time"

	"cpd-backend/internal/models"

	"gorm.io/gorm"
)

// GormStore: persistência do congelamento sobre Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) HasSnapshot(orgID uint, day time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.DemandSnapshot{}).
		Where("organization_id = ? AND operational_day = ?", orgID, day).
		Count(&count).Error
	return count > 0, err
}

// OutstandingDemand: para cada contagem enviada no dia, demanda =
// par da loja - sobra final (nunca negativa). Loja sem contagem no dia não
// gera demanda; não inventamos número.
func (s *GormStore) OutstandingDemand(orgID uint, day time.Time) ([]Line, error) {
	var counts []models.DailyCount
	err := s.db.
		Preload("Store").
		Joins("JOIN stores ON stores.id = daily_counts.store_id").
		Where("stores.organization_id = ? AND stores.active = true AND daily_counts.operational_day = ?", orgID, day).
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	var pars []models.StoreItemPar
	err = s.db.
		Joins("JOIN stores ON stores.id = store_item_pars.store_id").
		Where("stores.organization_id = ?", orgID).
		Find(&pars).Error
	if err != nil {
		return nil, err
	}

	type key struct{ storeID, itemID uint }
	parByKey := make(map[key]int, len(pars))
	for _, p := range pars {
		parByKey[key{p.StoreID, p.ItemID}] = p.ParLevel
	}

	lines := make([]Line, 0, len(counts))
	for _, ct := range counts {
		par, ok := parByKey[key{ct.StoreID, ct.ItemID}]
		if !ok {
			continue // item sem par cadastrado para a loja
		}
		qty := par - ct.FinalLeftover
		if qty <= 0 {
			continue
		}
		lines = append(lines, Line{
			ItemID:    ct.ItemID,
			StoreID:   ct.StoreID,
			StoreName: ct.Store.Name,
			Quantity:  qty,
		})
	}

	// Ordem determinística para o congelamento e os testes.
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ItemID != lines[j].ItemID {
			return lines[i].ItemID < lines[j].ItemID
		}
		return lines[i].StoreID < lines[j].StoreID
	})

	return lines, nil
}

func (s *GormStore) WriteFreeze(orgID uint, day time.Time, snaps []models.DemandSnapshot, records []models.ProductionRecord) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&snaps).Error; err != nil {
			return err
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// índice único (org, dia, item, loja): outro congelamento venceu
		return ErrDayFrozen
	}
	return err
}

// GormItemCatalog resolve itens por id para o dimensionamento no congelamento.
type GormItemCatalog struct {
	db *gorm.DB
}

func NewGormItemCatalog(db *gorm.DB) *GormItemCatalog {
	return &GormItemCatalog{db: db}
}

func (s *GormItemCatalog) ItemsByID(ids []uint) (map[uint]models.PortionedItem, error) {
	var items []models.PortionedItem
	if err := s.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.PortionedItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}
