package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrBadPayload indica corpo de webhook inteiramente inutilizável
	ErrBadPayload = fmt.Errorf("bad payload")

	// ErrDeliveryFailed indica que o gateway de mensageria não confirmou a
	// entrega; nenhuma chave é gravada na supressão nesse caso
	ErrDeliveryFailed = fmt.Errorf("delivery failed")
)

// Status do resultado de um ciclo de processamento
const (
	StatusAlerted    = "alert_sent"
	StatusNoAlert    = "no_alert"
	StatusSuppressed = "suppressed"
)

// WebhookResult resume o desfecho de um ciclo de processamento de webhook
type WebhookResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
}

// MonitorUseCase contém a lógica de processamento de eventos de estoque:
// normalização, resolução de vínculos, classificação, agregação,
// deduplicação e despacho do alerta
type MonitorUseCase struct {
	resolver   *RelationResolver
	classifier *StockClassifier
	store      DedupStore
	sender     Sender
	groupID    string
	location   *time.Location
	tracer     trace.Tracer

	// now é injetável para os testes simularem transições de dia
	now func() time.Time

	// mu serializa o trecho filtrar-enviar-gravar: dois ciclos concorrentes
	// nunca passam ambos pelo filtro para a mesma chave
	mu sync.Mutex
}

// NewMonitorUseCase cria uma nova instância de MonitorUseCase
func NewMonitorUseCase(
	resolver *RelationResolver,
	classifier *StockClassifier,
	store DedupStore,
	sender Sender,
	groupID string,
	location *time.Location,
	tracer trace.Tracer,
) *MonitorUseCase {
	return &MonitorUseCase{
		resolver:   resolver,
		classifier: classifier,
		store:      store,
		sender:     sender,
		groupID:    groupID,
		location:   location,
		tracer:     tracer,
		now:        time.Now,
	}
}

// ProcessWebhook executa um ciclo completo para um webhook recebido.
// Erros por registro são recuperados localmente (registro descartado, lote
// continua); ErrBadPayload e ErrDeliveryFailed sobem para o chamador sem
// corromper o estado de supressão.
func (uc *MonitorUseCase) ProcessWebhook(ctx context.Context, body []byte, contentType string, wh Warehouse) (*WebhookResult, error) {
	now := uc.now().In(uc.location)

	events, skipped, err := ParseWebhookBody(body, contentType, wh, now)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("ℹ️ [WEBHOOK] %d registro(s) descartado(s) no lote de %s", skipped, wh)
	}

	refs := uc.resolver.ResolveBatch(events)
	findings, recoveries := uc.classifyBatch(events, refs)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, key := range recoveries {
		if err := uc.store.Clear(ctx, key); err != nil {
			log.Printf("❌ [DEDUP] Falha ao limpar supressão de %s: %v", key, err)
		}
	}

	day := now.Format(dayLayout)
	eligible := uc.filterSuppressed(ctx, findings, day)

	if len(eligible) == 0 {
		if len(findings) > 0 {
			log.Printf("ℹ️ [WEBHOOK] Alerta ignorado (já enviado hoje) para %s", wh)
			return &WebhookResult{Status: StatusSuppressed, Message: "Alerta já enviado hoje", Skipped: skipped}, nil
		}
		log.Printf("ℹ️ [WEBHOOK] Nenhum alerta necessário para %s", wh)
		return &WebhookResult{Status: StatusNoAlert, Message: "Nenhum alerta necessário", Skipped: skipped}, nil
	}

	bundle := BuildAlertBundle(eligible, now)
	message := ComposeAlertMessage(bundle)

	ctx, span := uc.tracer.Start(ctx, "dispatch_alert")
	defer span.End()
	span.SetAttributes(
		attribute.String("bundle_id", bundle.ID),
		attribute.String("warehouse", string(wh)),
		attribute.Int("findings", len(eligible)),
	)

	if err := uc.sender.SendText(ctx, uc.groupID, message); err != nil {
		span.RecordError(err)
		log.Printf("❌ [DISPATCH] Falha na entrega do alerta %s: %v", bundle.ID, err)
		return nil, err
	}

	// Só grava a supressão após a entrega confirmada: uma falha de envio
	// deixa os achados elegíveis para o próximo ciclo
	for _, key := range bundle.Keys() {
		if err := uc.store.Commit(ctx, key, day); err != nil {
			log.Printf("❌ [DEDUP] Falha ao gravar supressão de %s: %v", key, err)
		}
	}

	log.Printf("✅ [DISPATCH] Alerta %s enviado com %d produto(s)", bundle.ID, len(eligible))
	return &WebhookResult{Status: StatusAlerted, Message: "Alerta enviado", Count: len(eligible), Skipped: skipped}, nil
}

// classifyBatch classifica os eventos do lote em achados críticos e sinais
// de recuperação. O achado do próprio pai é descartado quando pelo menos uma
// variação dele no lote ainda tem estoque, como faz o sistema de origem.
func (uc *MonitorUseCase) classifyBatch(events []StockEvent, refs map[string]ProductRef) ([]StockFinding, []DedupKey) {
	healthyVariantOf := make(map[string]bool)
	for _, ev := range events {
		ref := refs[ev.SKU]
		if ref.IsVariant && ev.Quantity > uc.classifier.Threshold {
			healthyVariantOf[ref.ParentSKU] = true
		}
	}

	var findings []StockFinding
	var recoveries []DedupKey

	for _, ev := range events {
		ref := refs[ev.SKU]
		finding, recovered := uc.classifier.Classify(ev, ref)
		if recovered {
			recoveries = append(recoveries, DedupKey{Warehouse: ev.Warehouse, SKU: ev.SKU})
			continue
		}

		if healthyVariantOf[ev.SKU] {
			log.Printf("ℹ️ [CLASSIFY] Produto pai %s ignorado (variações têm estoque)", ev.SKU)
			continue
		}

		findings = append(findings, *finding)
	}

	return findings, recoveries
}

// filterSuppressed remove achados cuja chave já alertou hoje. Erros de leitura
// do store contam como não suprimido: alertar duas vezes é preferível a
// silenciar um estoque zerado.
func (uc *MonitorUseCase) filterSuppressed(ctx context.Context, findings []StockFinding, day string) []StockFinding {
	var eligible []StockFinding
	for _, finding := range findings {
		key := finding.Key()
		alerted, err := uc.store.Alerted(ctx, key, day)
		if err != nil {
			log.Printf("❌ [DEDUP] Falha ao consultar supressão de %s: %v", key, err)
			alerted = false
		}
		if alerted {
			log.Printf("ℹ️ [DEDUP] Alerta ignorado (já enviado hoje) para %s", key)
			continue
		}
		eligible = append(eligible, finding)
	}
	return eligible
}
