// Package notificacao repassa os alertas de follow-up para um webhook
// externo (integração com o disparo de mensagens do escritório).
package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/agrolink/api-projetos/internal/alerta"
	"go.uber.org/zap"
)

type WebhookAlertas struct {
	url     string
	cliente *http.Client
	logger  *zap.Logger
}

func NewWebhookAlertas(url string, logger *zap.Logger) *WebhookAlertas {
	return &WebhookAlertas{
		url:     url,
		cliente: &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Named("webhook_alertas"),
	}
}

// NotificarAlertas envia os alertas emitidos em um único POST. Falha de
// entrega não interrompe o fluxo; o alerta já foi consumido no banco.
func (w *WebhookAlertas) NotificarAlertas(ctx context.Context, alertas []alerta.Alerta) {
	if w.url == "" || len(alertas) == 0 {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"alertas": alertas,
	})
	if err != nil {
		w.logger.Error("serializar alertas", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		w.logger.Error("montar requisição do webhook", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.cliente.Do(req)
	if err != nil {
		w.logger.Warn("enviar webhook de alertas", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.logger.Warn("webhook de alertas recusado", zap.Int("status", resp.StatusCode))
	}
}
