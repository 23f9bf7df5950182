package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hohemaloans/config"
	"hohemaloans/services"
	"hohemaloans/utils"
)

// WhatsAppController обрабатывает вебхуки WhatsApp Cloud API
type WhatsAppController struct {
	whatsappService *services.WhatsAppService
	verifyToken     string
}

// NewWhatsAppController создает новый экземпляр WhatsAppController
func NewWhatsAppController(whatsappService *services.WhatsAppService, cfg *config.Config) *WhatsAppController {
	return &WhatsAppController{
		whatsappService: whatsappService,
		verifyToken:     cfg.WhatsApp.VerifyToken,
	}
}

// webhookPayload повторяет структуру уведомления Cloud API в нужной нам
// части: текстовые сообщения от пользователей
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// VerifyWebhook обрабатывает подтверждение вебхука при подписке
func (c *WhatsAppController) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || token != c.verifyToken {
		http.Error(w, "Verification failed", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// ReceiveWebhook обрабатывает входящие сообщения. Cloud API требует
// быстрый ответ 200, поэтому сами сообщения обрабатываются асинхронно.
func (c *WhatsAppController) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.From == "" {
					continue
				}
				from := msg.From
				body := msg.Text.Body
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					if err := c.whatsappService.HandleInbound(ctx, from, body); err != nil {
						utils.LogError("Ошибка обработки сообщения WhatsApp от %s: %v", from, err)
					}
				}()
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}
