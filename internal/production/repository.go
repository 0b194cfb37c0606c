package production

import (
	"time"

	"cpd-backend/internal/models"
	"cpd-backend/internal/stock"

	"gorm.io/gorm"
)

// GormRecordStore: registros de produção sobre Postgres. Transições de status
// são UPDATEs condicionais; RowsAffected zero significa que outra chamada
// mexeu no registro primeiro.
type GormRecordStore struct {
	db *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

func (s *GormRecordStore) Get(id uint) (*models.ProductionRecord, error) {
	var rec models.ProductionRecord
	err := s.db.Preload("Item").Preload("Stores").First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormRecordStore) AdvanceStatus(id uint, from, to models.ProductionStatus) (bool, error) {
	res := s.db.Model(&models.ProductionRecord{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// Finalize: resultado + finished + crédito do estoque central numa transação.
// Só escreve se o registro ainda estiver em in_portioning; quem perde a
// corrida recebe false e nada é creditado duas vezes.
func (s *GormRecordStore) Finalize(rec *models.ProductionRecord, finishedAt time.Time) (bool, error) {
	done := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductionRecord{}).
			Where("id = ? AND status = ?", rec.ID, models.StatusInPortioning).
			Updates(map[string]any{
				"status":          models.StatusFinished,
				"lots_produced":   rec.LotsProduced,
				"actual_units":    rec.ActualUnits,
				"final_weight_kg": rec.FinalWeightKg,
				"scrap_weight_kg": rec.ScrapWeightKg,
				"finished_at":     finishedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		done = true
		return stock.Credit(tx, rec.OrganizationID, rec.ItemID, rec.ActualUnits)
	})
	return done, err
}

func (s *GormRecordStore) AddExpectedUnits(id uint, extra int) error {
	return s.db.Model(&models.ProductionRecord{}).
		Where("id = ?", id).
		Update("expected_units", gorm.Expr("expected_units + ?", extra)).Error
}
