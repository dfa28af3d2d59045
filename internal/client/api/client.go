package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс взаимодействия с сервером синхронизации
type ClientAPI interface {
	// Register регистрирует нового пользователя
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	// GetSalt получает public_salt пользователя
	GetSalt(ctx context.Context, username string) (*api.SaltResponse, error)
	// Login выполняет аутентификацию пользователя
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	// Refresh обновляет пару токенов по refresh token
	Refresh(ctx context.Context, req api.RefreshRequest) (*api.TokenResponse, error)
	// PushChange отправляет одно локальное изменение.
	// Отказ сервера по версии возвращается как *ConflictError.
	PushChange(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error)
	// PullChanges читает страницу фида изменений с server_seq > since
	PullChanges(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error)
	// Health проверяет доступность сервера
	Health(ctx context.Context) error
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ClientAPI = (*Client)(nil)

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, "POST", "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// GetSalt получает public_salt пользователя
func (c *Client) GetSalt(ctx context.Context, username string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	path := fmt.Sprintf("/api/v1/auth/salt/%s", url.PathEscape(username))
	if err := c.doRequest(ctx, "GET", path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, "POST", "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обновляет пару токенов по refresh token
func (c *Client) Refresh(ctx context.Context, req api.RefreshRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, "POST", "/api/v1/auth/refresh", "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// PushChange отправляет одно локальное изменение на сервер.
// Статус 409 декодируется в *ConflictError с текущим изменением сервера.
// Push не ретраится здесь: повтор - ответственность очереди оркестратора.
func (c *Client) PushChange(ctx context.Context, token string, req api.PushRequest) (*api.PushResponse, error) {
	status, respBody, err := c.doRaw(ctx, "POST", "/api/v1/sync/push", token, req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}

	if status == http.StatusConflict {
		var conflictResp api.PushConflictResponse
		if err := json.Unmarshal(respBody, &conflictResp); err != nil {
			return nil, fmt.Errorf("failed to decode conflict response: %w", err)
		}
		return nil, &ConflictError{
			Current: conflictResp.Current,
			Message: conflictResp.Message,
		}
	}

	if status < 200 || status >= 300 {
		return nil, decodeError(status, respBody)
	}

	var resp api.PushResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// PullChanges читает страницу фида изменений сервера.
// Запрос идемпотентный, поэтому сетевые сбои ретраятся с fibonacci backoff.
func (c *Client) PullChanges(ctx context.Context, token, entityType string, since int64, limit int) (*api.PullResponse, error) {
	query := url.Values{}
	query.Set("entity_type", entityType)
	query.Set("since", strconv.FormatInt(since, 10))
	query.Set("limit", strconv.Itoa(limit))
	path := "/api/v1/sync/changes?" + query.Encode()

	var resp api.PullResponse
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, respBody, err := c.doRaw(ctx, "GET", path, token, nil)
		if err != nil {
			return retry.RetryableError(err)
		}
		if status >= 500 {
			return retry.RetryableError(decodeError(status, respBody))
		}
		if status < 200 || status >= 300 {
			return decodeError(status, respBody)
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}

	return &resp, nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, "GET", "/api/v1/health", "", nil, nil); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// doRequest выполняет HTTP запрос и декодирует успешный ответ в result
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) error {
	status, respBody, err := c.doRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	// Проверяем статус код
	if status < 200 || status >= 300 {
		return decodeError(status, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// doRaw выполняет HTTP запрос и возвращает статус с сырым телом ответа
func (c *Client) doRaw(ctx context.Context, method, path, token string, body interface{}) (int, []byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// decodeError строит ошибку из неуспешного ответа сервера
func decodeError(status int, respBody []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("server error (%d): %s", status, errResp.Error)
	}
	return fmt.Errorf("request failed with status %d: %s", status, string(respBody))
}
