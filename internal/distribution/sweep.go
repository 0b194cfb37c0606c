package distribution

import (
	"fmt"
	"log"
	"time"
)

// PendingScanner localiza produções finalizadas dentro da janela que têm
// quebra por loja mas nenhuma linha de romaneio, tipicamente distribuições
// adiadas por falta de saldo na hora da finalização.
type PendingScanner interface {
	PendingSince(orgID uint, since time.Time) ([]TriggerInput, error)
}

type SweepResult struct {
	RecordsScanned     int             `json:"records_scanned"`
	RecordsDistributed int             `json:"records_distributed"`
	RecordsDeferred    int             `json:"records_deferred"`
	LinesCreated       int             `json:"lines_created"`
	RecordErrors       map[uint]string `json:"record_errors,omitempty"`
}

type Sweep struct {
	scanner    PendingScanner
	trigger    *Trigger
	windowDays int
	now        func() time.Time
}

func NewSweep(scanner PendingScanner, trigger *Trigger, windowDays int) *Sweep {
	return &Sweep{scanner: scanner, trigger: trigger, windowDays: windowDays, now: time.Now}
}

// Run reexecuta o gatilho para cada produção pendente na janela. A
// deduplicação do gatilho torna a varredura segura em qualquer frequência;
// uma produção que falha não interrompe as demais.
func (s *Sweep) Run(orgID uint) (SweepResult, error) {
	since := s.now().AddDate(0, 0, -s.windowDays)

	pending, err := s.scanner.PendingSince(orgID, since)
	if err != nil {
		return SweepResult{}, fmt.Errorf("varredura de pendências falhou: %w", err)
	}

	result := SweepResult{RecordsScanned: len(pending)}
	for _, in := range pending {
		res, err := s.trigger.Trigger(in)
		if err != nil {
			if result.RecordErrors == nil {
				result.RecordErrors = make(map[uint]string)
			}
			result.RecordErrors[in.ProductionRecordID] = err.Error()
			log.Printf("[WARN] reconciliação da produção %d falhou: %v", in.ProductionRecordID, err)
			continue
		}
		switch {
		case res.Deferred:
			result.RecordsDeferred++
		case res.LinesCreated > 0:
			result.RecordsDistributed++
			result.LinesCreated += res.LinesCreated
		}
	}

	return result, nil
}
