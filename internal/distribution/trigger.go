package distribution

import (
	"errors"
	"fmt"
	"log"

	"cpd-backend/internal/models"
	"cpd-backend/internal/notify"
)

// ErrDuplicateLine: o índice único (produção, item, loja) rejeitou a linha.
// Sinal esperado de "já distribuído", nunca um erro para o chamador.
var ErrDuplicateLine = errors.New("linha de romaneio já existe para esta produção")

type StoreDemand struct {
	StoreID   uint
	StoreName string
	Quantity  int
}

type TriggerInput struct {
	ProductionRecordID uint
	OrganizationID     uint
	ItemID             uint
	ItemName           string
	Stores             []StoreDemand
}

// TriggerResult: efeito do gatilho. Deferred e AlreadyDistributed são
// sucesso com efeito zero, não erro; StoreErrors carrega falhas isoladas
// por loja quando o restante do romaneio saiu.
type TriggerResult struct {
	Deferred           bool            `json:"deferred"`
	AlreadyDistributed bool            `json:"already_distributed"`
	StockAvailable     int             `json:"stock_available"`
	TotalDemand        int             `json:"total_demand"`
	ManifestsTouched   int             `json:"manifests_touched"`
	LinesCreated       int             `json:"lines_created"`
	StoreErrors        map[uint]string `json:"store_errors,omitempty"`
}

// ManifestStore: persistência dos romaneios.
type ManifestStore interface {
	// LineExists responde se a produção já gerou alguma linha para o item.
	LineExists(recordID, itemID uint) (bool, error)
	// FindOrCreateAwaiting devolve o romaneio aberto (awaiting_review) da
	// loja, criando um quando não existe. O bool indica criação.
	FindOrCreateAwaiting(orgID, storeID uint) (*models.DistributionManifest, bool, error)
	// AppendLine devolve ErrDuplicateLine quando o índice único rejeita.
	AppendLine(line *models.ManifestLine) error
}

// StockReader: saldo central do item.
type StockReader interface {
	Available(orgID, itemID uint) (int, error)
}

type Trigger struct {
	manifests ManifestStore
	stock     StockReader
	notifier  notify.Notifier
}

func NewTrigger(manifests ManifestStore, stock StockReader, notifier notify.Notifier) *Trigger {
	return &Trigger{manifests: manifests, stock: stock, notifier: notifier}
}

// Trigger tenta transformar a quebra por loja de uma produção finalizada em
// linhas de romaneio. Sem saldo para a demanda inteira, adia (remessa parcial
// não existe aqui); a varredura de reconciliação tenta de novo depois.
// Idempotente: com qualquer linha já criada para (produção, item), é no-op.
func (t *Trigger) Trigger(in TriggerInput) (TriggerResult, error) {
	stores := make([]StoreDemand, 0, len(in.Stores))
	total := 0
	for _, s := range in.Stores {
		if s.Quantity <= 0 {
			continue
		}
		stores = append(stores, s)
		total += s.Quantity
	}
	if len(stores) == 0 {
		return TriggerResult{}, nil
	}

	available, err := t.stock.Available(in.OrganizationID, in.ItemID)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("saldo central não lido: %w", err)
	}

	result := TriggerResult{StockAvailable: available, TotalDemand: total}

	if available < total {
		result.Deferred = true
		t.notifier.Publish(in.OrganizationID, models.AlertDistributionDeferred,
			fmt.Sprintf("Distribuição de %q adiada: %d em estoque para %d de demanda", in.ItemName, available, total),
			result)
		return result, nil
	}

	exists, err := t.manifests.LineExists(in.ProductionRecordID, in.ItemID)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("checagem de linha existente falhou: %w", err)
	}
	if exists {
		result.AlreadyDistributed = true
		return result, nil
	}

	touched := make(map[uint]bool)
	for _, s := range stores {
		manifest, _, err := t.manifests.FindOrCreateAwaiting(in.OrganizationID, s.StoreID)
		if err != nil {
			result.recordStoreError(s, err)
			continue
		}

		err = t.manifests.AppendLine(&models.ManifestLine{
			ManifestID:         manifest.ID,
			StoreID:            s.StoreID,
			ItemID:             in.ItemID,
			ProductionRecordID: in.ProductionRecordID,
			Quantity:           s.Quantity,
		})
		if errors.Is(err, ErrDuplicateLine) {
			// gatilho concorrente criou a linha desta loja primeiro
			continue
		}
		if err != nil {
			result.recordStoreError(s, err)
			continue
		}

		result.LinesCreated++
		touched[manifest.ID] = true
	}
	result.ManifestsTouched = len(touched)

	if result.ManifestsTouched > 0 {
		t.notifier.Publish(in.OrganizationID, models.AlertDistributionCreated,
			fmt.Sprintf("%d romaneio(s) de %q atualizados; confira peso/volume antes do despacho",
				result.ManifestsTouched, in.ItemName),
			result)
	}

	return result, nil
}

// Falha de uma loja não derruba as demais; fica no resultado e no log.
func (r *TriggerResult) recordStoreError(s StoreDemand, err error) {
	if r.StoreErrors == nil {
		r.StoreErrors = make(map[uint]string)
	}
	r.StoreErrors[s.StoreID] = err.Error()
	log.Printf("[WARN] romaneio da loja %s (%d) falhou: %v", s.StoreName, s.StoreID, err)
}
