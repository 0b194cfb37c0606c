package calibration

import (
	"cpd-backend/internal/models"

	"gorm.io/gorm"
)

// Implementações GORM dos stores do controlador.

type GormSampleStore struct {
	db *gorm.DB
}

func NewGormSampleStore(db *gorm.DB) *GormSampleStore {
	return &GormSampleStore{db: db}
}

func (s *GormSampleStore) Append(sample *models.CalibrationSample) error {
	return s.db.Create(sample).Error
}

func (s *GormSampleStore) RecentByItem(itemID uint, limit int) ([]models.CalibrationSample, error) {
	var samples []models.CalibrationSample
	err := s.db.
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&samples).Error
	return samples, err
}

func (s *GormSampleStore) SetNewOperationalAvg(sampleID uint, avgG float64) error {
	return s.db.Model(&models.CalibrationSample{}).
		Where("id = ?", sampleID).
		Update("new_operational_avg_g", avgG).Error
}

type GormItemStore struct {
	db *gorm.DB
}

func NewGormItemStore(db *gorm.DB) *GormItemStore {
	return &GormItemStore{db: db}
}

func (s *GormItemStore) Get(itemID uint) (*models.PortionedItem, error) {
	var item models.PortionedItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormItemStore) UpdateOperationalAverage(itemID uint, avgG float64) error {
	return s.db.Model(&models.PortionedItem{}).
		Where("id = ?", itemID).
		Update("operational_avg_weight_g", avgG).Error
}
