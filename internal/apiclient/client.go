// Package apiclient — типизированный клиент REST API трекера подписок.
//
// Клиент только получает данные: все производные величины (статистика,
// ближайшие платежи, выборки) вызывающий код считает сам через пакет tracker.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrUnexpectedShape возвращается, если ответ сервера не совпадает с ожидаемой структурой,
// например поле entries пришло не массивом.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// StatusError — ответ сервера с кодом, отличным от 2xx.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// Client обращается к API с bearer-токеном.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken задает токен авторизации.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient создает клиент для API по адресу baseURL, например http://localhost:8080/api/v1.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token возвращает текущий токен.
func (c *Client) Token() string {
	return c.token
}

// envelope — общая обертка ответов API.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

// LoginResult — данные успешного входа.
type LoginResult struct {
	Token    string `json:"token"`
	UID      string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login выполняет вход и запоминает полученный токен в клиенте.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "apiclient.Login"

	var res LoginResult
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%s: %w: empty token", op, ErrUnexpectedShape)
	}
	c.token = res.Token
	return &res, nil
}

// ListSubscriptions возвращает подписки текущего пользователя.
// Критерии передаются серверу как query-параметры; пустые значения опускаются.
func (c *Client) ListSubscriptions(ctx context.Context, criteria models.Criteria) ([]models.Subscription, error) {
	const op = "apiclient.ListSubscriptions"

	q := url.Values{}
	for name, value := range map[string]string{
		"search":    criteria.Search,
		"category":  criteria.Category,
		"recurring": criteria.Recurring,
		"status":    criteria.Status,
		"sort":      criteria.Sort,
	} {
		if value != "" {
			q.Set(name, value)
		}
	}

	var page struct {
		ListCount int             `json:"list_count"`
		Entries   json.RawMessage `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/subscriptions/list", q, nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := bytes.TrimSpace(page.Entries)
	if len(entries) == 0 || entries[0] != '[' {
		return nil, fmt.Errorf("%s: %w: entries is not an array", op, ErrUnexpectedShape)
	}
	var subs []models.Subscription
	if err := json.Unmarshal(entries, &subs); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnexpectedShape, err)
	}
	return subs, nil
}

// Stats возвращает серверную сводку по подпискам.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	const op = "apiclient.Stats"

	var stats models.Stats
	if err := c.do(ctx, http.MethodGet, "/subscriptions/stats", nil, nil, &stats); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// Upcoming возвращает предстоящие платежи в пределах days дней
// с серверными фильтрами по сумме и срочности.
func (c *Client) Upcoming(ctx context.Context, days int, filter models.PaymentFilter) (models.UpcomingReport, error) {
	const op = "apiclient.Upcoming"

	q := url.Values{}
	q.Set("days", fmt.Sprint(days))
	if filter.Amount != "" {
		q.Set("amount", filter.Amount)
	}
	if filter.Urgency != "" {
		q.Set("urgency", filter.Urgency)
	}

	var report models.UpcomingReport
	if err := c.do(ctx, http.MethodGet, "/subscriptions/upcoming", q, nil, &report); err != nil {
		return models.UpcomingReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return report, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do выполняет запрос и раскладывает поле data ответа в out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, decodeErr)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: missing data", ErrUnexpectedShape)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}
