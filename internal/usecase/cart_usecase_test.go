package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/domain/entity"
	"foodhub/pkg/errors"
)

type fakeSessions struct {
	token string
	user  *entity.User
}

func (s *fakeSessions) Token() (string, error)      { return s.token, nil }
func (s *fakeSessions) User() (*entity.User, error) { return s.user, nil }

func (s *fakeSessions) Save(token string, user *entity.User) error {
	s.token = token
	s.user = user
	return nil
}

func (s *fakeSessions) Clear() error {
	s.token = ""
	s.user = nil
	return nil
}

type fakeLocalCart struct {
	mu    sync.Mutex
	items []entity.CartItem
	saved bool
}

func (r *fakeLocalCart) Load() ([]entity.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.saved {
		return []entity.CartItem{}, nil
	}
	items := make([]entity.CartItem, len(r.items))
	copy(items, r.items)
	return items, nil
}

func (r *fakeLocalCart) Save(items []entity.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make([]entity.CartItem, len(items))
	copy(r.items, items)
	r.saved = true
	return nil
}

func (r *fakeLocalCart) Exists() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, nil
}

func (r *fakeLocalCart) Delete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.saved = false
	return nil
}

// fakeCartAPI mimics the backend: it resolves menu ids against a catalog and
// re-enforces the single-store rule server side.
type fakeCartAPI struct {
	mu      sync.Mutex
	catalog map[string]entity.CartItem
	items   []entity.CartItem
	failing bool
	calls   []string
}

func (a *fakeCartAPI) fail(call string) error {
	a.calls = append(a.calls, call)
	if a.failing {
		return errors.Unavailable("backend down", nil)
	}
	return nil
}

func (a *fakeCartAPI) GetCart(ctx context.Context, token string) ([]entity.CartItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail("get"); err != nil {
		return nil, err
	}
	items := make([]entity.CartItem, len(a.items))
	copy(items, a.items)
	return items, nil
}

func (a *fakeCartAPI) AddToCart(ctx context.Context, token, menuID string, quantity int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail("add"); err != nil {
		return err
	}
	item, ok := a.catalog[menuID]
	if !ok {
		return errors.NotFound("menu item", nil)
	}
	if len(a.items) > 0 && a.items[0].SellerID != item.SellerID {
		return errors.StoreConflict(a.items[0].StoreName, item.StoreName)
	}
	for i := range a.items {
		if a.items[i].ID == menuID {
			a.items[i].Quantity += quantity
			return nil
		}
	}
	item.Quantity = quantity
	a.items = append(a.items, item)
	return nil
}

func (a *fakeCartAPI) UpdateCartItem(ctx context.Context, token, menuID string, quantity int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail("update"); err != nil {
		return err
	}
	for i := range a.items {
		if a.items[i].ID == menuID {
			a.items[i].Quantity = quantity
		}
	}
	return nil
}

func (a *fakeCartAPI) RemoveFromCart(ctx context.Context, token, menuID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail("remove"); err != nil {
		return err
	}
	kept := a.items[:0]
	for _, item := range a.items {
		if item.ID != menuID {
			kept = append(kept, item)
		}
	}
	a.items = kept
	return nil
}

func (a *fakeCartAPI) ClearCart(ctx context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fail("clear"); err != nil {
		return err
	}
	a.items = nil
	return nil
}

func nasiGoreng() entity.CartItem {
	return entity.CartItem{
		ID: "menu-1", Name: "Nasi Goreng", Price: 15000, Quantity: 1,
		SellerID: "seller-1", StoreName: "Warung Bu Sri",
	}
}

func esTeh() entity.CartItem {
	return entity.CartItem{
		ID: "menu-2", Name: "Es Teh", Price: 5000, Quantity: 1,
		SellerID: "seller-1", StoreName: "Warung Bu Sri",
	}
}

func ayamGeprek() entity.CartItem {
	return entity.CartItem{
		ID: "menu-3", Name: "Ayam Geprek", Price: 18000, Quantity: 1,
		SellerID: "seller-2", StoreName: "Kantin Pak Budi",
	}
}

func newAnonymousEngine() (*CartUseCase, *fakeCartAPI, *fakeLocalCart) {
	api := &fakeCartAPI{catalog: map[string]entity.CartItem{
		"menu-1": nasiGoreng(), "menu-2": esTeh(), "menu-3": ayamGeprek(),
	}}
	local := &fakeLocalCart{}
	return NewCartUseCase(api, local, &fakeSessions{}), api, local
}

func newAuthedEngine() (*CartUseCase, *fakeCartAPI, *fakeLocalCart, *fakeSessions) {
	api := &fakeCartAPI{catalog: map[string]entity.CartItem{
		"menu-1": nasiGoreng(), "menu-2": esTeh(), "menu-3": ayamGeprek(),
	}}
	local := &fakeLocalCart{}
	sessions := &fakeSessions{token: "valid-token"}
	return NewCartUseCase(api, local, sessions), api, local, sessions
}

func TestCartTotalsAfterEachOperation(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	result := engine.AddToCart(ctx, nasiGoreng())
	require.True(t, result.Success)
	assert.Equal(t, int64(15000), engine.CartTotal())
	assert.Equal(t, 1, engine.ItemCount())

	item := esTeh()
	item.Quantity = 3
	result = engine.AddToCart(ctx, item)
	require.True(t, result.Success)
	assert.Equal(t, int64(30000), engine.CartTotal())
	assert.Equal(t, 4, engine.ItemCount())

	require.NoError(t, engine.UpdateQuantity(ctx, "menu-2", 1))
	assert.Equal(t, int64(20000), engine.CartTotal())
	assert.Equal(t, 2, engine.ItemCount())

	require.NoError(t, engine.RemoveFromCart(ctx, "menu-1"))
	assert.Equal(t, int64(5000), engine.CartTotal())
	assert.Equal(t, 1, engine.ItemCount())
}

func TestAddToCartIncrementsExistingItem(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	engine.AddToCart(ctx, nasiGoreng())

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddToCartRejectsInvalidItem(t *testing.T) {
	engine, _, _ := newAnonymousEngine()

	result := engine.AddToCart(context.Background(), entity.CartItem{Name: "No ID"})
	assert.False(t, result.Success)
	assert.Empty(t, result.ErrorCode)
	assert.Empty(t, engine.Items())
}

func TestSingleStoreInvariant(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	require.True(t, engine.AddToCart(ctx, nasiGoreng()).Success)

	result := engine.AddToCart(ctx, ayamGeprek())
	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeDifferentStore, result.ErrorCode)
	assert.Equal(t, "Warung Bu Sri", result.ExistingStoreName)
	assert.Equal(t, "Kantin Pak Budi", result.NewStoreName)

	// The rejected add never mutates the cart.
	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "menu-1", items[0].ID)

	// Same seller still passes.
	assert.True(t, engine.AddToCart(ctx, esTeh()).Success)
}

func TestClearCartAndAddItemResolvesConflict(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	result := engine.ClearCartAndAddItem(ctx, ayamGeprek())

	require.True(t, result.Success)
	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "menu-3", items[0].ID)
	assert.Equal(t, int64(18000), engine.CartTotal())
}

func TestClearCartIsIdempotent(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	require.NoError(t, engine.ClearCart(ctx))
	assert.Empty(t, engine.Items())

	require.NoError(t, engine.ClearCart(ctx))
	assert.Empty(t, engine.Items())
}

func TestQuantityZeroRemovesItem(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	engine.AddToCart(ctx, esTeh())

	require.NoError(t, engine.UpdateQuantity(ctx, "menu-1", 0))

	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "menu-2", items[0].ID)
}

func TestUpdateQuantityRejectsBadInput(t *testing.T) {
	engine, _, _ := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())

	assert.Error(t, engine.UpdateQuantity(ctx, "", 2))
	assert.Error(t, engine.UpdateQuantity(ctx, "menu-1", -1))
	assert.Equal(t, 1, engine.ItemCount())
}

func TestLocalCartSurvivesRestart(t *testing.T) {
	api := &fakeCartAPI{catalog: map[string]entity.CartItem{"menu-1": nasiGoreng()}}
	local := &fakeLocalCart{}
	sessions := &fakeSessions{}
	ctx := context.Background()

	engine := NewCartUseCase(api, local, sessions)
	require.NoError(t, engine.Load(ctx))
	engine.AddToCart(ctx, nasiGoreng())
	engine.AddToCart(ctx, nasiGoreng())

	// Fresh engine over the same storage reproduces the cart.
	restarted := NewCartUseCase(api, local, sessions)
	require.NoError(t, restarted.Load(ctx))

	assert.Equal(t, engine.Items(), restarted.Items())
	assert.Equal(t, int64(30000), restarted.CartTotal())
}

func TestRemoteFailureDegradesToLocal(t *testing.T) {
	engine, api, local, _ := newAuthedEngine()
	ctx := context.Background()

	require.NoError(t, engine.Load(ctx))
	require.True(t, engine.IsOnline())

	api.failing = true
	result := engine.AddToCart(ctx, nasiGoreng())

	assert.True(t, result.Success)
	assert.False(t, engine.IsOnline())
	assert.Equal(t, "Failed to sync with server", engine.Err())
	require.Len(t, engine.Items(), 1)

	// Subsequent mutations stay local and keep succeeding.
	result = engine.AddToCart(ctx, esTeh())
	assert.True(t, result.Success)
	assert.Equal(t, 2, engine.ItemCount())

	saved, err := local.Load()
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestLoadFallsBackToLocalWhenBackendDown(t *testing.T) {
	engine, api, local, _ := newAuthedEngine()
	ctx := context.Background()

	require.NoError(t, local.Save([]entity.CartItem{nasiGoreng()}))
	api.failing = true

	require.NoError(t, engine.Load(ctx))

	assert.False(t, engine.IsOnline())
	require.Len(t, engine.Items(), 1)
	assert.Equal(t, "menu-1", engine.Items()[0].ID)
}

func TestRemoteStoreConflictSurfacesAsResult(t *testing.T) {
	engine, api, _, _ := newAuthedEngine()
	ctx := context.Background()

	// Remote cart already holds a seller-2 item the engine has not seen.
	api.items = []entity.CartItem{ayamGeprek()}

	result := engine.AddToCart(ctx, nasiGoreng())

	assert.False(t, result.Success)
	assert.Equal(t, errors.CodeDifferentStore, result.ErrorCode)
	assert.Equal(t, "Kantin Pak Budi", result.ExistingStoreName)
	// A domain rejection is not a transport failure.
	assert.True(t, engine.IsOnline())
}

func TestSyncWithBackendPushesLocalCart(t *testing.T) {
	engine, api, _, sessions := newAuthedEngine()
	ctx := context.Background()

	// Build the cart anonymously, then log in.
	sessions.token = ""
	require.NoError(t, engine.Load(ctx))
	engine.AddToCart(ctx, nasiGoreng())
	item := esTeh()
	item.Quantity = 2
	engine.AddToCart(ctx, item)

	sessions.token = "valid-token"
	require.NoError(t, engine.SyncWithBackend(ctx))

	assert.True(t, engine.IsOnline())
	assert.Equal(t, 3, engine.ItemCount())
	// Remote was cleared before re-adding, no duplicates.
	assert.Equal(t, "clear", api.calls[0])
	assert.Len(t, api.items, 2)
}

func TestClearLocalCartOnLogout(t *testing.T) {
	engine, _, local := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	exists, _ := local.Exists()
	require.True(t, exists)

	engine.ClearLocalCart()

	assert.Empty(t, engine.Items())
	exists, _ = local.Exists()
	assert.False(t, exists)
	assert.Empty(t, engine.Err())
}

func TestClearingPersistedCartPersistsEmptyState(t *testing.T) {
	engine, _, local := newAnonymousEngine()
	ctx := context.Background()

	engine.AddToCart(ctx, nasiGoreng())
	require.NoError(t, engine.ClearCart(ctx))

	exists, err := local.Exists()
	require.NoError(t, err)
	assert.True(t, exists, "cleared cart should persist the empty state")
	saved, err := local.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRemotePathRefreshesFromBackend(t *testing.T) {
	engine, api, _, _ := newAuthedEngine()
	ctx := context.Background()

	require.NoError(t, engine.Load(ctx))
	result := engine.AddToCart(ctx, nasiGoreng())
	require.True(t, result.Success)

	// The engine adopted the server's view, price included.
	items := engine.Items()
	require.Len(t, items, 1)
	assert.Equal(t, api.items[0], items[0])
}
