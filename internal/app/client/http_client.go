package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"farmsurvey/internal/app/client/config"
	syncdomain "farmsurvey/internal/domain/sync"

	"golang.org/x/exp/slog"
)

const (
	deviceHeader = "X-Device-ID"
	userAgent    = "FarmSurvey-Client/1.0"
)

type httpClient struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	token   string
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Login  string `json:"login"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type registerResponse struct {
	ID     int    `json:"user_id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: cfg.SyncTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		log:     log,
		baseURL: cfg.BaseURL(),
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, "")
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *httpClient) Register(ctx context.Context, login, password string) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/user/register", credentials{login, password}, "")
	if err != nil {
		return err
	}

	var out registerResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return err
	}
	if out.Status == "Error" {
		return fmt.Errorf("ошибка регистрации: %s", out.Error)
	}
	return nil
}

func (h *httpClient) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/user/login", credentials{login, password}, "")
	if err != nil {
		return "", err
	}

	var out loginResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return "", err
	}
	if out.Status == "Error" || out.Token == "" {
		return "", fmt.Errorf("ошибка входа: %s", out.Error)
	}

	h.SetToken(out.Token)
	return out.Token, nil
}

// SubmitBatch отправляет пакет; любая ошибка означает, что результат не подтвержден
func (h *httpClient) SubmitBatch(ctx context.Context, req syncdomain.BatchRequest) (*syncdomain.BatchResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync", req, req.DeviceID)
	if err != nil {
		return nil, err
	}

	var out syncdomain.BatchResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Status == "Error" {
		return nil, fmt.Errorf("%w: %s", ErrSyncRejected, out.Error)
	}
	return &out, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any, deviceID string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	if deviceID != "" {
		req.Header.Set(deviceHeader, deviceID)
	}

	h.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ошибка чтения ответа: %w", ErrConnectivity, err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "size", len(body))

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		msg := fmt.Sprintf("статус %d", resp.StatusCode)
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				msg = errResp.Error
			} else if errResp.Detail != "" {
				msg = errResp.Detail
			}
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNotAuthenticated, msg)
		case resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrSyncRejected, msg)
		default:
			return fmt.Errorf("ошибка сервера: %s", msg)
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

// isConnectivity true для ошибок сети
func isConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}
