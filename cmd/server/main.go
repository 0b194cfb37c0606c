package main

import (
	"log"
	"strings"

	"cpd-backend/internal/audit"
	"cpd-backend/internal/calibration"
	"cpd-backend/internal/catalog"
	"cpd-backend/internal/config"
	"cpd-backend/internal/database"
	"cpd-backend/internal/demand"
	"cpd-backend/internal/distribution"
	"cpd-backend/internal/notify"
	"cpd-backend/internal/planning"
	"cpd-backend/internal/production"
	"cpd-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	db := database.DB

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Erro inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado no servidor",
			})
		},
	})

	// CORS: origens em string separada por vírgula no .env
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Montagem dos motores. Todos compartilham a mesma caixa de alertas e o
	// mesmo store de itens (planejamento lê a média que a calibração escreve).
	notifier := notify.NewOutbox(db)
	itemStore := calibration.NewGormItemStore(db)

	calibrator := calibration.NewController(
		calibration.NewGormSampleStore(db),
		itemStore,
		notifier,
		calibration.Settings{
			SanityMinG: cfg.SanityMinWeightG,
			SanityMaxG: cfg.SanityMaxWeightG,
			Window:     cfg.CalibrationWindow,
			FetchSize:  cfg.CalibrationFetchSize,
		},
	)

	trigger := distribution.NewTrigger(
		distribution.NewGormManifestStore(db),
		distribution.NewGormStockReader(db),
		notifier,
	)
	sweep := distribution.NewSweep(
		distribution.NewGormPendingScanner(db),
		trigger,
		cfg.ReconciliationWindowDays,
	)

	engine := production.NewEngine(
		production.NewGormRecordStore(db),
		itemStore,
		calibrator,
		trigger,
		notifier,
	)

	freezer := demand.NewController(
		demand.NewGormStore(db),
		demand.NewGormItemCatalog(db),
	)

	api := app.Group("/api")

	// Cadastro
	api.Post("/organizations", catalog.CreateOrganizationHandler(cfg))
	api.Get("/organizations", catalog.ListOrganizationsHandler())
	api.Put("/organizations/:id", catalog.UpdateOrganizationHandler())
	api.Post("/stores", catalog.CreateStoreHandler())
	api.Get("/stores", catalog.ListStoresHandler())
	api.Put("/stores/:id", catalog.UpdateStoreHandler())
	api.Post("/items", catalog.CreateItemHandler())
	api.Get("/items", catalog.ListItemsHandler())
	api.Put("/items/:id", catalog.UpdateItemHandler())

	// Contagens e pares das lojas
	api.Post("/counts", demand.SubmitCountHandler())
	api.Put("/pars", demand.SetParHandler())

	// Demanda: status do dia (tenta congelar quando passou do corte),
	// congelamento manual e snapshots congelados
	api.Get("/demand/status", demand.DemandStatusHandler(freezer))
	api.Post("/demand/freeze", demand.FreezeHandler(freezer))
	api.Get("/demand/snapshots", demand.ListSnapshotsHandler())

	// Pré-visualização do dimensionamento de lotes
	api.Get("/planning/preview", planning.PreviewLotPlanHandler())

	// Produção
	api.Get("/production-records", production.ListRecordsHandler())
	api.Post("/production-records/:id/advance", production.AdvanceHandler(engine))
	api.Post("/production-records/:id/finalize", production.FinalizeHandler(engine))
	api.Post("/production-records/:id/extra", production.ExtraHandler(engine))

	// Calibração
	api.Get("/calibration/samples", calibration.ListSamplesHandler())

	// Distribuição
	api.Get("/manifests", distribution.ListManifestsHandler())
	api.Get("/manifests/:id", distribution.GetManifestHandler())
	api.Post("/distribution/reconcile", distribution.ReconcileHandler(sweep))

	// Estoque central
	api.Get("/central-stock", stock.ListCentralStockHandler())
	api.Post("/central-stock/adjust", stock.AdjustStockHandler())

	// Alertas e auditoria
	api.Get("/alerts", notify.ListAlertsHandler())
	api.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
