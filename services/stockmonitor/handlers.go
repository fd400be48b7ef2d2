package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MonitorUseCaseInterface define a interface para o use case
type MonitorUseCaseInterface interface {
	ProcessWebhook(ctx context.Context, body []byte, contentType string, wh Warehouse) (*WebhookResult, error)
}

// WebhookHandler contém os handlers HTTP dos webhooks de estoque
type WebhookHandler struct {
	useCase MonitorUseCaseInterface
	tracer  trace.Tracer
}

// NewWebhookHandler cria uma nova instância de WebhookHandler
func NewWebhookHandler(useCase MonitorUseCaseInterface, tracer trace.Tracer) *WebhookHandler {
	return &WebhookHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// FullWebhook recebe notificações de estoque do Depósito Full
func (h *WebhookHandler) FullWebhook(c *gin.Context) {
	h.handle(c, WarehouseFull)
}

// PrincipalWebhook recebe notificações de estoque do Depósito Principal
func (h *WebhookHandler) PrincipalWebhook(c *gin.Context) {
	h.handle(c, WarehousePrincipal)
}

func (h *WebhookHandler) handle(c *gin.Context, wh Warehouse) {
	ctx, span := h.tracer.Start(c.Request.Context(), "process_webhook")
	defer span.End()

	span.SetAttributes(attribute.String("warehouse", string(wh)))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "failed to read request body"})
		return
	}

	result, err := h.useCase.ProcessWebhook(ctx, body, c.ContentType(), wh)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrBadPayload):
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		case errors.Is(err, ErrDeliveryFailed):
			c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		}
		return
	}

	span.SetAttributes(
		attribute.String("result", result.Status),
		attribute.Int("count", result.Count),
		attribute.Int("skipped", result.Skipped),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":  result.Status,
		"message": result.Message,
		"count":   result.Count,
		"skipped": result.Skipped,
	})
}

// Root verifica se o servidor está em execução
func (h *WebhookHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"service":   "stock-monitor",
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
	})
}

// HealthCheck verifica a saúde do serviço
func (h *WebhookHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stock-monitor",
	})
}
