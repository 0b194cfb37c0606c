package stock

import (
	"errors"

	"cpd-backend/internal/models"

	"gorm.io/gorm"
)

// Credit soma unidades prontas ao saldo central do item, criando a linha no
// primeiro crédito. O incremento é feito no banco (UPDATE ... quantity =
// quantity + n), então créditos concorrentes nunca se perdem; a corrida de
// dois primeiros créditos é resolvida pelo índice único (org, item) com um
// retry em cima da linha que venceu.
func Credit(db *gorm.DB, orgID, itemID uint, units int) error {
	if units <= 0 {
		return nil
	}

	res := db.Model(&models.CentralStock{}).
		Where("organization_id = ? AND item_id = ?", orgID, itemID).
		Update("quantity", gorm.Expr("quantity + ?", units))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	err := db.Create(&models.CentralStock{
		OrganizationID: orgID,
		ItemID:         itemID,
		Quantity:       units,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return db.Model(&models.CentralStock{}).
			Where("organization_id = ? AND item_id = ?", orgID, itemID).
			Update("quantity", gorm.Expr("quantity + ?", units)).Error
	}
	return err
}

// Available devolve o saldo atual; item sem linha de estoque tem saldo zero.
func Available(db *gorm.DB, orgID, itemID uint) (int, error) {
	var row models.CentralStock
	err := db.Where("organization_id = ? AND item_id = ?", orgID, itemID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Quantity, nil
}
