// Package catalog предоставляет клиент для внешнего каталога товаров.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrItemNotFound возвращается, если каталог не знает товар.
var ErrItemNotFound = errors.New("catalog item not found")

// Client инкапсулирует HTTP-взаимодействие с каталогом товаров.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ItemDetails описывает ответ каталога по одному товару.
type ItemDetails struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// NewClient создаёт HTTP-клиент для обращения к каталогу по указанному адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ItemDetails запрашивает описание товара по идентификатору.
func (c *Client) ItemDetails(ctx context.Context, itemID int64) (*ItemDetails, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("catalog client not configured")
	}

	url := c.baseURL + "/api/items/" + strconv.FormatInt(itemID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var details ItemDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &details, nil
}
