package distribution

import (
	"errors"
	"time"

	"cpd-backend/internal/models"
	"cpd-backend/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormManifestStore: romaneios sobre Postgres.
type GormManifestStore struct {
	db *gorm.DB
}

func NewGormManifestStore(db *gorm.DB) *GormManifestStore {
	return &GormManifestStore{db: db}
}

func (s *GormManifestStore) LineExists(recordID, itemID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.ManifestLine{}).
		Where("production_record_id = ? AND item_id = ?", recordID, itemID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormManifestStore) FindOrCreateAwaiting(orgID, storeID uint) (*models.DistributionManifest, bool, error) {
	var manifest models.DistributionManifest
	err := s.db.
		Where("organization_id = ? AND store_id = ? AND status = ?", orgID, storeID, models.ManifestAwaitingReview).
		Order("id").
		First(&manifest).Error
	if err == nil {
		return &manifest, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	manifest = models.DistributionManifest{
		Code:           uuid.NewString(),
		OrganizationID: orgID,
		StoreID:        storeID,
		Status:         models.ManifestAwaitingReview,
	}
	if err := s.db.Create(&manifest).Error; err != nil {
		return nil, false, err
	}
	return &manifest, true, nil
}

func (s *GormManifestStore) AppendLine(line *models.ManifestLine) error {
	err := s.db.Create(line).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateLine
	}
	return err
}

// GormStockReader adapta o saldo central à leitura do gatilho.
type GormStockReader struct {
	db *gorm.DB
}

func NewGormStockReader(db *gorm.DB) *GormStockReader {
	return &GormStockReader{db: db}
}

func (s *GormStockReader) Available(orgID, itemID uint) (int, error) {
	return stock.Available(s.db, orgID, itemID)
}

// GormPendingScanner: produções finalizadas na janela, com quebra por loja e
// sem nenhuma linha de romaneio.
type GormPendingScanner struct {
	db *gorm.DB
}

func NewGormPendingScanner(db *gorm.DB) *GormPendingScanner {
	return &GormPendingScanner{db: db}
}

func (s *GormPendingScanner) PendingSince(orgID uint, since time.Time) ([]TriggerInput, error) {
	var records []models.ProductionRecord
	err := s.db.
		Preload("Stores").
		Preload("Item").
		Where("organization_id = ? AND status = ? AND operational_day >= ?",
			orgID, models.StatusFinished, since).
		Where("NOT EXISTS (SELECT 1 FROM manifest_lines WHERE manifest_lines.production_record_id = production_records.id)").
		Order("operational_day, id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	inputs := make([]TriggerInput, 0, len(records))
	for _, rec := range records {
		if len(rec.Stores) == 0 {
			continue
		}
		stores := make([]StoreDemand, 0, len(rec.Stores))
		for _, st := range rec.Stores {
			stores = append(stores, StoreDemand{StoreID: st.StoreID, StoreName: st.StoreName, Quantity: st.Quantity})
		}
		inputs = append(inputs, TriggerInput{
			ProductionRecordID: rec.ID,
			OrganizationID:     rec.OrganizationID,
			ItemID:             rec.ItemID,
			ItemName:           rec.Item.Name,
			Stores:             stores,
		})
	}
	return inputs, nil
}
