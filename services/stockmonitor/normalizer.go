package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// webhookEnvelope cobre os dois formatos de corpo aceitos: o envelope
// clássico do ERP ("retorno"/"estoques") e o formato achatado ("events")
type webhookEnvelope struct {
	Retorno *retornoBody  `json:"retorno"`
	Events  []eventRecord `json:"events"`
}

type retornoBody struct {
	Estoques []estoqueWrapper `json:"estoques"`
}

type estoqueWrapper struct {
	Estoque *estoqueRecord `json:"estoque"`
}

type estoqueRecord struct {
	Codigo       string            `json:"codigo"`
	Nome         string            `json:"nome"`
	CodigoPai    string            `json:"codigoPai"`
	EstoqueAtual flexNumber        `json:"estoqueAtual"`
	Depositos    []depositoWrapper `json:"depositos"`
}

type depositoWrapper struct {
	Deposito *depositoRecord `json:"deposito"`
}

type depositoRecord struct {
	Nome          string      `json:"nome"`
	Saldo         flexNumber `json:"saldo"`
	Desconsiderar string      `json:"desconsiderar"`
}

type eventRecord struct {
	SKU         string      `json:"sku"`
	ParentSKU   string      `json:"parent_sku"`
	ProductName string      `json:"product_name"`
	Quantity    flexNumber  `json:"quantity"`
}

// ParseWebhookBody normaliza o corpo bruto de um webhook em StockEvents.
// O depósito é fixado pelo endpoint receptor e nunca inferido do payload.
// Registros individuais inválidos são descartados e contados; um corpo
// inteiramente inutilizável retorna ErrBadPayload e nenhum evento.
func ParseWebhookBody(body []byte, contentType string, wh Warehouse, receivedAt time.Time) ([]StockEvent, int, error) {
	raw := body

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid form body: %v", ErrBadPayload, err)
		}
		data := values.Get("data")
		if data == "" {
			return nil, 0, fmt.Errorf("%w: form parameter 'data' not found", ErrBadPayload)
		}
		raw = []byte(data)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: invalid JSON: %v", ErrBadPayload, err)
	}

	switch {
	case envelope.Retorno != nil:
		if envelope.Retorno.Estoques == nil {
			return nil, 0, fmt.Errorf("%w: missing 'retorno.estoques'", ErrBadPayload)
		}
		return normalizeEnvelope(envelope.Retorno.Estoques, wh, receivedAt)
	case envelope.Events != nil:
		return normalizeFlat(envelope.Events, wh, receivedAt)
	default:
		return nil, 0, fmt.Errorf("%w: missing 'retorno' or 'events'", ErrBadPayload)
	}
}

// normalizeEnvelope extrai eventos do envelope clássico do ERP.
// O saldo considerado é o do depósito do endpoint quando presente; depósitos
// marcados com desconsiderar == "S" são ignorados.
func normalizeEnvelope(estoques []estoqueWrapper, wh Warehouse, receivedAt time.Time) ([]StockEvent, int, error) {
	var events []StockEvent
	skipped := 0

	for _, wrapper := range estoques {
		record := wrapper.Estoque
		if record == nil || record.Codigo == "" {
			skipped++
			continue
		}

		quantity, ok := selectBalance(record, wh)
		if !ok {
			log.Printf("ℹ️ [NORMALIZE] Registro descartado (quantidade inválida): %s", record.Codigo)
			skipped++
			continue
		}

		events = append(events, StockEvent{
			SKU:         record.Codigo,
			ParentSKU:   record.CodigoPai,
			ProductName: record.Nome,
			Quantity:    quantity,
			Warehouse:   wh,
			ReceivedAt:  receivedAt,
		})
	}

	return events, skipped, nil
}

// selectBalance escolhe o saldo relevante de um registro: o depósito cujo
// nome casa com o endpoint, senão o primeiro depósito não desconsiderado,
// senão o estoque total do registro.
func selectBalance(record *estoqueRecord, wh Warehouse) (int, bool) {
	var fallback *depositoRecord

	for _, wrapper := range record.Depositos {
		dep := wrapper.Deposito
		if dep == nil || dep.Desconsiderar == "S" {
			continue
		}
		if dep.Nome == string(wh) {
			return parseQuantity(dep.Saldo)
		}
		if fallback == nil {
			fallback = dep
		}
	}

	if fallback != nil {
		return parseQuantity(fallback.Saldo)
	}
	return parseQuantity(record.EstoqueAtual)
}

func normalizeFlat(records []eventRecord, wh Warehouse, receivedAt time.Time) ([]StockEvent, int, error) {
	var events []StockEvent
	skipped := 0

	for _, record := range records {
		if record.SKU == "" {
			skipped++
			continue
		}

		quantity, ok := parseQuantity(record.Quantity)
		if !ok {
			log.Printf("ℹ️ [NORMALIZE] Registro descartado (quantidade inválida): %s", record.SKU)
			skipped++
			continue
		}

		events = append(events, StockEvent{
			SKU:         record.SKU,
			ParentSKU:   record.ParentSKU,
			ProductName: record.ProductName,
			Quantity:    quantity,
			Warehouse:   wh,
			ReceivedAt:  receivedAt,
		})
	}

	return events, skipped, nil
}

// flexNumber aceita quantidades como número JSON ou string numérica.
// Um valor irrecuperável não falha o lote: a conversão posterior descarta
// apenas o registro.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	*n = flexNumber(b)
	return nil
}

// parseQuantity converte a quantidade recebida (número ou string numérica)
// para inteiro. O ERP envia saldos como float ("2.0"), truncados aqui.
func parseQuantity(raw flexNumber) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
