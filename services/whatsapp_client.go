package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"hohemaloans/config"
)

// WhatsAppClient представляет тонкий клиент WhatsApp Cloud API
type WhatsAppClient struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// NewWhatsAppClient создает новый экземпляр WhatsAppClient
func NewWhatsAppClient(cfg *config.Config) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:       cfg.WhatsApp.APIBaseURL,
		phoneNumberID: cfg.WhatsApp.PhoneNumberID,
		accessToken:   cfg.WhatsApp.AccessToken,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText отправляет обычное текстовое сообщение
func (c *WhatsAppClient) SendText(to string, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return c.send(payload)
}

// SendTemplate отправляет шаблонное сообщение
func (c *WhatsAppClient) SendTemplate(to string, templateName string, language string, params []string) error {
	components := []map[string]interface{}{}
	if len(params) > 0 {
		parameters := make([]map[string]string, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, map[string]string{"type": "text", "text": p})
		}
		components = append(components, map[string]interface{}{
			"type":       "body",
			"parameters": parameters,
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       templateName,
			"language":   map[string]string{"code": language},
			"components": components,
		},
	}
	return c.send(payload)
}

// SendTemplateWithFallback пытается отправить шаблонное сообщение, при
// ошибке отправляет обычный текст
func (c *WhatsAppClient) SendTemplateWithFallback(to string, templateName string, language string, params []string, fallbackText string) error {
	if err := c.SendTemplate(to, templateName, language, params); err != nil {
		log.Printf("Ошибка отправки шаблона %s, переходим на текст: %v", templateName, err)
		return c.SendText(to, fallbackText)
	}
	return nil
}

// send выполняет запрос к Cloud API
func (c *WhatsAppClient) send(payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения: %v", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("Cloud API вернул статус %d", resp.StatusCode)
	}
	return nil
}
