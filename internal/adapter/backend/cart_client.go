package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"foodhub/internal/domain/entity"
	"foodhub/pkg/errors"
	"foodhub/pkg/logger"
)

// CartClient talks to the remote cart API. Every response is wrapped in the
// backend's {success, message, data} envelope; a single-store conflict comes
// back as an application-level payload with errorCode DIFFERENT_STORE.
type CartClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CartClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type cartItemDTO struct {
	MenuID       string `json:"menuId"`
	MenuItemName string `json:"menuItemName"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
	ImageURL     string `json:"imageURL,omitempty"`
	SellerID     string `json:"sellerId"`
	StoreName    string `json:"storeName"`
}

type cartData struct {
	Items []cartItemDTO `json:"items"`
}

type envelope struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message,omitempty"`
	Data              json.RawMessage `json:"data,omitempty"`
	ErrorCode         string          `json:"errorCode,omitempty"`
	ExistingStoreName string          `json:"existingStoreName,omitempty"`
	NewStoreName      string          `json:"newStoreName,omitempty"`
}

func toEntity(dto cartItemDTO) entity.CartItem {
	return entity.CartItem{
		ID:        dto.MenuID,
		Name:      dto.MenuItemName,
		Price:     dto.Price,
		Quantity:  dto.Quantity,
		Image:     dto.ImageURL,
		SellerID:  dto.SellerID,
		StoreName: dto.StoreName,
	}
}

func (c *CartClient) GetCart(ctx context.Context, token string) ([]entity.CartItem, error) {
	env, err := c.do(ctx, token, http.MethodGet, "/api/v1/cart", nil)
	if err != nil {
		return nil, err
	}

	var data cartData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, errors.Unavailable("malformed cart response", err)
		}
	}

	items := make([]entity.CartItem, 0, len(data.Items))
	for _, dto := range data.Items {
		items = append(items, toEntity(dto))
	}
	return items, nil
}

func (c *CartClient) AddToCart(ctx context.Context, token, menuID string, quantity int) error {
	body := map[string]interface{}{"menuId": menuID, "quantity": quantity}
	_, err := c.do(ctx, token, http.MethodPost, "/api/v1/cart/add", body)
	return err
}

func (c *CartClient) UpdateCartItem(ctx context.Context, token, menuID string, quantity int) error {
	body := map[string]interface{}{"menuId": menuID, "quantity": quantity}
	_, err := c.do(ctx, token, http.MethodPut, "/api/v1/cart/update", body)
	return err
}

func (c *CartClient) RemoveFromCart(ctx context.Context, token, menuID string) error {
	body := map[string]interface{}{"menuId": menuID}
	_, err := c.do(ctx, token, http.MethodDelete, "/api/v1/cart/remove", body)
	return err
}

func (c *CartClient) ClearCart(ctx context.Context, token string) error {
	_, err := c.do(ctx, token, http.MethodDelete, "/api/v1/cart/clear", nil)
	return err
}

func (c *CartClient) do(ctx context.Context, token, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Internal("failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Internal("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("cart API unreachable: %s %s: %v", method, path, err)
		return nil, errors.Unavailable("cart API unreachable", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Unavailable("malformed cart API response", err)
	}

	// The errorCode field is the contract for the single-store conflict;
	// everything else that is not a success is a transport-level failure.
	if env.ErrorCode == errors.CodeDifferentStore {
		conflict := errors.StoreConflict(env.ExistingStoreName, env.NewStoreName)
		if env.Message != "" {
			conflict.Message = env.Message
		}
		return nil, conflict
	}
	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("cart API returned status %d", resp.StatusCode)
		}
		return nil, errors.Unavailable(msg, nil)
	}

	return &env, nil
}
