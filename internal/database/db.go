package database

import (
	"log"

	"cpd-backend/internal/config"
	"cpd-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true, // precisamos de gorm.ErrDuplicatedKey nos inserts concorrentes
	})
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Organization{},
		&models.Store{},
		&models.PortionedItem{},
		&models.StoreItemPar{},
		&models.DailyCount{},
		&models.DemandSnapshot{},
		&models.ProductionRecord{},
		&models.ProductionRecordStore{},
		&models.CalibrationSample{},
		&models.CentralStock{},
		&models.DistributionManifest{},
		&models.ManifestLine{},
		&models.Alert{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	// Os índices únicos abaixo são a rede de segurança das corridas
	// check-then-act (congelamento duplo, linha de romaneio dupla).
	// AutoMigrate cria via tag em bancos novos; bancos antigos podem não ter.
	ensureUniqueIndex("idx_snapshot_org_day_item_store", "demand_snapshots",
		"organization_id, operational_day, item_id, store_id")
	ensureUniqueIndex("idx_line_record_item_store", "manifest_lines",
		"production_record_id, item_id, store_id")
	ensureUniqueIndex("idx_stock_org_item", "central_stocks",
		"organization_id, item_id")

	log.Println("Conexão com o banco ok. Migration concluída.")
}

func ensureUniqueIndex(name, table, columns string) {
	if err := DB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS " + name + " ON " + table + " (" + columns + ")",
	).Error; err != nil {
		log.Printf("Erro criando índice %s (pode já existir): %v", name, err)
	}
}
