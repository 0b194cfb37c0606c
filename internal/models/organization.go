package models

import "time"

// Organization: uma CPD (cozinha de produção central) e suas lojas.
// Fuso horário e horário de corte são configuráveis por organização;
// os defaults vêm do config.
type Organization struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null;unique"`
	Timezone   string `gorm:"size:64;not null"` // IANA, ex: America/Sao_Paulo
	CutoffTime string `gorm:"size:5;not null"`  // "HH:MM" (hora local da CPD)
	Active     bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
