package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sender define a interface do colaborador de mensageria de saída
type Sender interface {
	SendText(ctx context.Context, recipient string, text string) error
}

// sendTextRequest é o payload de envio de texto da Evolution API
type sendTextRequest struct {
	Number       string `json:"number"`
	Text         string `json:"text"`
	IsGroup      bool   `json:"isGroup"`
	DelaySeconds int    `json:"delaySeconds,omitempty"`
}

// EvolutionClient implementa Sender usando a Evolution API (gateway de
// WhatsApp). A chamada de saída carrega timeout limitado e uma retentativa,
// por ser a única E/S com dependência externa potencialmente lenta.
type EvolutionClient struct {
	client   *resty.Client
	instance string
}

// NewEvolutionClient cria uma nova instância de EvolutionClient
func NewEvolutionClient(baseURL, apiKey, instance string, timeout time.Duration) *EvolutionClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(2 * time.Second)

	return &EvolutionClient{
		client:   client,
		instance: instance,
	}
}

// SendText envia uma mensagem de texto para o destinatário. Destinatários de
// grupo (id contendo "@g.us") não recebem simulação de digitação.
func (c *EvolutionClient) SendText(ctx context.Context, recipient string, text string) error {
	isGroup := strings.Contains(recipient, "@g.us")

	payload := sendTextRequest{
		Number:  recipient,
		Text:    text,
		IsGroup: isGroup,
	}
	if !isGroup {
		payload.DelaySeconds = 1
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/message/sendText/" + c.instance)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		log.Printf("❌ [WHATSAPP] Gateway respondeu %d: %s", resp.StatusCode(), resp.String())
		return fmt.Errorf("%w: gateway returned status %d", ErrDeliveryFailed, resp.StatusCode())
	}

	log.Printf("✅ [WHATSAPP] Mensagem entregue para %s (grupo: %v)", recipient, isGroup)
	return nil
}
