package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	CORSOrigins string

	// Defaults de organização (cada organização pode sobrescrever os seus).
	DefaultTimezone   string // fuso da CPD (IANA)
	DefaultCutoffTime string // "HH:MM", corte diário da demanda

	// Calibração: faixa de sanidade descarta amostras absurdas (erro de
	// digitação/balança) antes da média móvel.
	SanityMinWeightG float64
	SanityMaxWeightG float64
	// Janela da média móvel e quantas amostras buscar antes do filtro.
	CalibrationWindow    int
	CalibrationFetchSize int

	// Varredura de reconciliação: quantos dias para trás procurar produções
	// finalizadas sem romaneio.
	ReconciliationWindowDays int
}

func Load() *Config {
	// .env local para desenvolvimento; em produção as variáveis vêm do ambiente.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=cpd port=5432 sslmode=disable"),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		DefaultTimezone:   getEnv("CPD_TIMEZONE", "America/Sao_Paulo"),
		DefaultCutoffTime: getEnv("DEMAND_CUTOFF_TIME", "03:00"),

		SanityMinWeightG:     getEnvFloat("CALIBRATION_SANITY_MIN_G", 200),
		SanityMaxWeightG:     getEnvFloat("CALIBRATION_SANITY_MAX_G", 800),
		CalibrationWindow:    getEnvInt("CALIBRATION_WINDOW", 10),
		CalibrationFetchSize: getEnvInt("CALIBRATION_FETCH_SIZE", 20),

		ReconciliationWindowDays: getEnvInt("RECONCILIATION_WINDOW_DAYS", 2),
	}

	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=cpd port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN usando valor padrão; em produção defina a conexão do seu Postgres.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS usando valor padrão; em produção defina o domínio do frontend.")
	}
	if cfg.SanityMinWeightG >= cfg.SanityMaxWeightG {
		log.Fatalf("[FATAL] Faixa de sanidade inválida: min %.0fg >= max %.0fg", cfg.SanityMinWeightG, cfg.SanityMaxWeightG)
	}
	if cfg.CalibrationWindow <= 0 || cfg.CalibrationFetchSize < cfg.CalibrationWindow {
		log.Fatalf("[FATAL] Janela de calibração inválida: window=%d fetch=%d", cfg.CalibrationWindow, cfg.CalibrationFetchSize)
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s=%q não é inteiro, usando %d", key, v, def)
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[WARN] %s=%q não é numérico, usando %g", key, v, def)
	}
	return def
}
