package demand

import "time"

type Status string

const (
	StatusOpen              Status = "open"
	StatusPastCutoffPending Status = "past_cutoff_pending"
	StatusFrozen            Status = "frozen"
)

// ComputeStatus decide a situação do dia operacional no horário local da CPD.
// A comparação é de string em "HH:MM" zero-padded, de propósito: evita
// aritmética de fuso/horário de verão num ponto que só precisa de ordem
// lexicográfica.
func ComputeStatus(nowLocal time.Time, cutoffHHMM string, hasSnapshot bool) Status {
	if hasSnapshot {
		return StatusFrozen
	}
	if nowLocal.Format("15:04") >= cutoffHHMM {
		return StatusPastCutoffPending
	}
	return StatusOpen
}

// Normalize reduz o instante à data pura (coluna date no banco).
func Normalize(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrentOperationalDay: o dia de negócio aberto para contagens. Antes do
// corte é a data local de hoje; depois do corte, hoje já congelou e o dia
// aberto passa a ser amanhã.
func CurrentOperationalDay(nowLocal time.Time, cutoffHHMM string) time.Time {
	day := Normalize(nowLocal)
	if nowLocal.Format("15:04") >= cutoffHHMM {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
