package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"foodhub/internal/domain/entity"
	"foodhub/internal/domain/repository"
	"foodhub/pkg/errors"
	"foodhub/pkg/logger"
)

const syncFailedMessage = "Failed to sync with server"

// CartResult is the outcome of an add operation. A single-store conflict is
// reported here as data, not as an error, so the caller can offer the
// clear-and-add choice.
type CartResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	ErrorCode         string `json:"error_code,omitempty"`
	ExistingStoreName string `json:"existing_store_name,omitempty"`
	NewStoreName      string `json:"new_store_name,omitempty"`
}

// CartUseCase owns the authoritative view of the current cart. When the
// principal is authenticated and the backend reachable it mirrors the remote
// cart; otherwise it works against the local persisted cart. A remote
// failure mid-operation flips the engine offline and completes the operation
// locally instead of surfacing a second failure.
type CartUseCase struct {
	cartAPI   CartAPI
	localRepo repository.LocalCartRepository
	sessions  repository.SessionRepository
	validate  *validator.Validate

	// opMu serializes mutations end to end, including the remote round-trip
	// and re-fetch, so operation N+1 always observes N's settled items.
	opMu sync.Mutex

	mu        sync.RWMutex
	items     []entity.CartItem
	online    bool
	lastError string

	loading atomic.Bool
}

func NewCartUseCase(
	cartAPI CartAPI,
	localRepo repository.LocalCartRepository,
	sessions repository.SessionRepository,
) *CartUseCase {
	return &CartUseCase{
		cartAPI:   cartAPI,
		localRepo: localRepo,
		sessions:  sessions,
		validate:  validator.New(),
		items:     []entity.CartItem{},
		online:    true,
	}
}

// Load runs the session-start initialization: remote cart for authenticated
// principals with local fallback, local cart otherwise.
func (u *CartUseCase) Load(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	if !u.isAuthenticated() {
		u.loadLocal()
		return nil
	}

	u.loading.Store(true)
	defer u.loading.Store(false)

	token := u.token()
	items, err := u.cartAPI.GetCart(ctx, token)
	if err != nil {
		logger.Warn("failed to load cart from backend, falling back to local: %v", err)
		u.markOffline()
		u.loadLocal()
		return nil
	}

	u.setItems(items)
	u.markOnline()
	return nil
}

// AddToCart appends the item or bumps its quantity. Quantity defaults to 1.
// The single-store invariant is enforced before any mutation, on both the
// remote and the local path.
func (u *CartUseCase) AddToCart(ctx context.Context, item entity.CartItem) *CartResult {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	if err := u.validate.Struct(item); err != nil {
		logger.Error("invalid item data for AddToCart: %v", err)
		return &CartResult{Success: false, Message: "Invalid item data"}
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	if result := u.checkStoreConflict(item); result != nil {
		return result
	}

	if u.isAuthenticated() && u.isOnline() {
		u.loading.Store(true)
		defer u.loading.Store(false)

		token := u.token()
		if err := u.cartAPI.AddToCart(ctx, token, item.ID, item.Quantity); err != nil {
			// The backend re-enforces the single-store rule; its verdict is
			// surfaced as-is rather than falling back silently.
			if conflict, ok := errors.AsStoreConflict(err); ok {
				return conflictResult(conflict)
			}
			logger.Warn("failed to add to cart via API, using local storage: %v", err)
			u.markOffline()
			u.addLocal(item)
			return &CartResult{Success: true}
		}

		u.refreshFromBackend(ctx, token)
		return &CartResult{Success: true}
	}

	u.addLocal(item)
	return &CartResult{Success: true}
}

// UpdateQuantity sets the quantity directly. Zero removes the item.
func (u *CartUseCase) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if id == "" || quantity < 0 {
		return errors.BadRequest("invalid parameters for UpdateQuantity", nil)
	}
	if quantity == 0 {
		return u.RemoveFromCart(ctx, id)
	}

	u.opMu.Lock()
	defer u.opMu.Unlock()

	if u.isAuthenticated() && u.isOnline() {
		u.loading.Store(true)
		defer u.loading.Store(false)

		token := u.token()
		if err := u.cartAPI.UpdateCartItem(ctx, token, id, quantity); err != nil {
			logger.Warn("failed to update cart via API, using local storage: %v", err)
			u.markOffline()
			u.updateLocal(id, quantity)
			return nil
		}
		u.refreshFromBackend(ctx, token)
		return nil
	}

	u.updateLocal(id, quantity)
	return nil
}

func (u *CartUseCase) RemoveFromCart(ctx context.Context, id string) error {
	if id == "" {
		return errors.BadRequest("invalid item id for RemoveFromCart", nil)
	}

	u.opMu.Lock()
	defer u.opMu.Unlock()
	u.removeLocked(ctx, id)
	return nil
}

func (u *CartUseCase) ClearCart(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()
	u.clearLocked(ctx)
	return nil
}

// ClearCartAndAddItem resolves a store conflict: empty the cart, then add
// the item from the new store.
func (u *CartUseCase) ClearCartAndAddItem(ctx context.Context, item entity.CartItem) *CartResult {
	u.opMu.Lock()
	u.clearLocked(ctx)
	u.opMu.Unlock()

	return u.AddToCart(ctx, item)
}

// SyncWithBackend pushes the local cart over the remote one. Called exactly
// once, right after login: the remote cart is cleared, every local item is
// re-added, and the re-fetched remote cart becomes authoritative.
func (u *CartUseCase) SyncWithBackend(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	if !u.isAuthenticated() || len(u.snapshot()) == 0 {
		return nil
	}

	u.loading.Store(true)
	defer u.loading.Store(false)

	token := u.token()
	if err := u.cartAPI.ClearCart(ctx, token); err != nil {
		logger.Error("failed to sync cart with backend: %v", err)
		u.markOffline()
		return err
	}

	for _, item := range u.snapshot() {
		if err := u.cartAPI.AddToCart(ctx, token, item.ID, item.Quantity); err != nil {
			logger.Error("failed to sync cart item %s with backend: %v", item.ID, err)
			u.markOffline()
			return err
		}
	}

	u.refreshFromBackend(ctx, token)
	u.markOnline()
	return nil
}

// ClearLocalCart empties the in-memory cart and erases the persisted value
// without touching the remote cart. Called on logout.
func (u *CartUseCase) ClearLocalCart() {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.mu.Lock()
	u.items = []entity.CartItem{}
	u.lastError = ""
	u.mu.Unlock()

	if err := u.localRepo.Delete(); err != nil {
		logger.Warn("failed to erase persisted cart: %v", err)
	}
}

// Items returns a snapshot of the current cart contents.
func (u *CartUseCase) Items() []entity.CartItem {
	u.mu.RLock()
	defer u.mu.RUnlock()
	items := make([]entity.CartItem, len(u.items))
	copy(items, u.items)
	return items
}

// CartTotal folds the subtotal over the current items.
func (u *CartUseCase) CartTotal() int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return entity.CartTotal(u.items)
}

// ItemCount folds the total quantity over the current items.
func (u *CartUseCase) ItemCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return entity.ItemCount(u.items)
}

func (u *CartUseCase) IsOnline() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.online
}

func (u *CartUseCase) IsLoading() bool {
	return u.loading.Load()
}

// Err returns the last sync failure message, empty when healthy.
func (u *CartUseCase) Err() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lastError
}

// internal helpers, called with opMu held

func (u *CartUseCase) removeLocked(ctx context.Context, id string) {
	if u.isAuthenticated() && u.isOnline() {
		u.loading.Store(true)
		defer u.loading.Store(false)

		token := u.token()
		if err := u.cartAPI.RemoveFromCart(ctx, token, id); err != nil {
			logger.Warn("failed to remove from cart via API, using local storage: %v", err)
			u.markOffline()
			u.removeLocal(id)
			return
		}
		u.refreshFromBackend(ctx, token)
		return
	}

	u.removeLocal(id)
}

func (u *CartUseCase) clearLocked(ctx context.Context) {
	if u.isAuthenticated() && u.isOnline() {
		u.loading.Store(true)
		defer u.loading.Store(false)

		token := u.token()
		if err := u.cartAPI.ClearCart(ctx, token); err != nil {
			logger.Warn("failed to clear cart via API, using local storage: %v", err)
			u.markOffline()
		}
	}

	u.setItems([]entity.CartItem{})
}

func (u *CartUseCase) checkStoreConflict(item entity.CartItem) *CartResult {
	items := u.snapshot()
	if len(items) == 0 || item.SellerID == "" || items[0].SellerID == "" {
		return nil
	}
	if items[0].SellerID == item.SellerID {
		return nil
	}
	return conflictResult(errors.StoreConflict(items[0].StoreName, item.StoreName))
}

func conflictResult(conflict *errors.StoreConflictError) *CartResult {
	return &CartResult{
		Success:           false,
		Message:           conflict.Message,
		ErrorCode:         errors.CodeDifferentStore,
		ExistingStoreName: conflict.ExistingStoreName,
		NewStoreName:      conflict.NewStoreName,
	}
}

func (u *CartUseCase) addLocal(item entity.CartItem) {
	items := u.snapshot()
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			u.setItems(items)
			return
		}
	}
	u.setItems(append(items, item))
}

func (u *CartUseCase) updateLocal(id string, quantity int) {
	items := u.snapshot()
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
		}
	}
	u.setItems(items)
}

func (u *CartUseCase) removeLocal(id string) {
	items := u.snapshot()
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	u.setItems(kept)
}

// refreshFromBackend re-fetches the remote cart after a successful write so
// the server stays authoritative on stock and price.
func (u *CartUseCase) refreshFromBackend(ctx context.Context, token string) {
	items, err := u.cartAPI.GetCart(ctx, token)
	if err != nil {
		logger.Warn("failed to refresh cart from backend: %v", err)
		u.markOffline()
		return
	}
	u.setItems(items)
}

func (u *CartUseCase) loadLocal() {
	items, err := u.localRepo.Load()
	if err != nil {
		logger.Warn("failed to load persisted cart: %v", err)
		items = []entity.CartItem{}
	}
	u.mu.Lock()
	u.items = items
	u.mu.Unlock()
}

// setItems replaces the cart and writes through to local storage when the
// cart is non-empty or a persisted value already exists, so clearing a
// previously saved cart persists the empty state.
func (u *CartUseCase) setItems(items []entity.CartItem) {
	if items == nil {
		items = []entity.CartItem{}
	}
	u.mu.Lock()
	u.items = items
	u.mu.Unlock()

	exists, err := u.localRepo.Exists()
	if err != nil {
		logger.Warn("failed to check persisted cart: %v", err)
		exists = false
	}
	if len(items) > 0 || exists {
		if err := u.localRepo.Save(items); err != nil {
			logger.Warn("failed to persist cart: %v", err)
		}
	}
}

func (u *CartUseCase) snapshot() []entity.CartItem {
	u.mu.RLock()
	defer u.mu.RUnlock()
	items := make([]entity.CartItem, len(u.items))
	copy(items, u.items)
	return items
}

func (u *CartUseCase) isAuthenticated() bool {
	return u.token() != ""
}

func (u *CartUseCase) token() string {
	token, err := u.sessions.Token()
	if err != nil {
		logger.Warn("failed to read session token: %v", err)
		return ""
	}
	return token
}

func (u *CartUseCase) isOnline() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.online
}

func (u *CartUseCase) markOffline() {
	u.mu.Lock()
	u.online = false
	u.lastError = syncFailedMessage
	u.mu.Unlock()
}

func (u *CartUseCase) markOnline() {
	u.mu.Lock()
	u.online = true
	u.lastError = ""
	u.mu.Unlock()
}
