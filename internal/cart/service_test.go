package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jaldistore/cart-engine/internal/gateway"
	"github.com/jaldistore/cart-engine/internal/offers"
	"github.com/jaldistore/cart-engine/pkg/config"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
	"github.com/jaldistore/cart-engine/pkg/types"
)

type qtyCall struct {
	ID  string
	Qty int
}

type fakeGateway struct {
	mu              sync.Mutex
	nextID          int
	priceBySlug     map[string]int64
	addCalls        []gateway.AddItemRequest
	qtyCalls        []qtyCall
	removeCalls     [][]string
	removeCartCalls []string
	fetchCalls      int
	fetchResult     []gateway.RemoteCart
	failNext        error
	fetched         chan struct{}
}

func (f *fakeGateway) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeGateway) AddItem(_ context.Context, _ string, req gateway.AddItemRequest) (*gateway.CartItemRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	f.addCalls = append(f.addCalls, req)
	f.nextID++
	price := f.priceBySlug[req.Slug]
	if price == 0 {
		price = 100
	}
	return &gateway.CartItemRecord{
		ID:             fmt.Sprintf("srv-%d", f.nextID),
		Slug:           req.Slug,
		CatalogID:      req.CatalogID,
		Qty:            req.Qty,
		UnitPriceCents: price,
		LineTotalCents: price * int64(req.Qty),
		Customizable:   req.Customizable,
		Customizations: req.Customizations,
	}, nil
}

func (f *fakeGateway) UpdateQty(_ context.Context, _ string, cartItemID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.qtyCalls = append(f.qtyCalls, qtyCall{ID: cartItemID, Qty: qty})
	return nil
}

func (f *fakeGateway) RemoveItems(_ context.Context, _ string, cartItemIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.removeCalls = append(f.removeCalls, cartItemIDs)
	return nil
}

func (f *fakeGateway) RemoveCart(_ context.Context, _ string, storeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.removeCartCalls = append(f.removeCartCalls, storeID)
	return nil
}

func (f *fakeGateway) FetchCart(_ context.Context, _ string) ([]gateway.RemoteCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	f.fetchCalls++
	if f.fetched != nil {
		select {
		case f.fetched <- struct{}{}:
		default:
		}
	}
	return f.fetchResult, nil
}

type memStore struct {
	mu      sync.Mutex
	payload []byte
	saves   int
	clears  int
}

func (m *memStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload, nil
}

func (m *memStore) Save(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
	m.saves++
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	m.clears++
	return nil
}

type fakeOffers struct {
	offers map[string]*offers.Offer
}

func (f *fakeOffers) GetOffer(_ context.Context, _, offerID string) (*offers.Offer, error) {
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

type fakeLimits struct {
	limits map[string]int
}

func (f *fakeLimits) MaxQty(_ context.Context, catalogID string) (int, error) {
	return f.limits[catalogID], nil
}

type fixture struct {
	svc   *Service
	gw    *fakeGateway
	store *memStore
}

func newFixture(t *testing.T, opts ServiceOptions) *fixture {
	t.Helper()
	gw := &fakeGateway{priceBySlug: map[string]int64{}}
	store := &memStore{}
	if opts.Gateway == nil {
		opts.Gateway = gw
	} else {
		gw = opts.Gateway.(*fakeGateway)
	}
	if opts.Snapshots == nil {
		opts.Snapshots = store
	}
	if opts.Sync.Debounce == 0 {
		opts.Sync.Debounce = time.Hour
	}
	svc, err := NewService(opts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return &fixture{svc: svc, gw: gw, store: store}
}

func TestAddItemCreatesCart(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})

	err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "store-1", Slug: "americano", CatalogID: "cat-1", Qty: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, ok := fx.svc.CartFor("store-1")
	if !ok {
		t.Fatal("expected cart for store-1")
	}
	if len(view.Items) != 1 || view.Items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", view.Items)
	}
	if view.SubtotalCents != 200 || view.TotalCents != 200 || view.DiscountCents != 0 {
		t.Fatalf("unexpected totals %+v", view)
	}
	if fx.store.saves != 1 {
		t.Fatalf("expected one snapshot save, got %d", fx.store.saves)
	}
}

func TestAddItemMergesIdenticalLines(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("second add: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if len(view.Items) != 1 || view.Items[0].Qty != 2 {
		t.Fatalf("expected one merged line with qty 2, got %+v", view.Items)
	}
	if len(fx.gw.addCalls) != 1 {
		t.Fatalf("expected one remote add, got %d", len(fx.gw.addCalls))
	}
	if len(fx.gw.qtyCalls) != 1 || fx.gw.qtyCalls[0].Qty != 2 {
		t.Fatalf("expected remote qty update to 2, got %+v", fx.gw.qtyCalls)
	}
}

func TestAddItemDistinctCustomizations(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})

	large := types.Customizations{{Group: "size", Option: "large"}}
	small := types.Customizations{{Group: "size", Option: "small"}}
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1, Customizable: true, Customizations: large}); err != nil {
		t.Fatalf("add large: %v", err)
	}
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1, Customizable: true, Customizations: small}); err != nil {
		t.Fatalf("add small: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if len(view.Items) != 2 {
		t.Fatalf("expected two distinct lines, got %+v", view.Items)
	}
}

func TestAddItemRequiresCredential(t *testing.T) {
	fx := newFixture(t, ServiceOptions{})

	err := fx.svc.AddItem(context.Background(), " ", AddItemInput{StoreID: "s", Slug: "x", Qty: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(fx.gw.addCalls) != 0 {
		t.Fatal("no network call may be attempted without a credential")
	}
}

func TestAddItemHonorsPurchaseLimit(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{Limits: &fakeLimits{limits: map[string]int{"cat-9": 2}}})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", CatalogID: "cat-9", Qty: 2}); err != nil {
		t.Fatalf("add within limit: %v", err)
	}
	err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", CatalogID: "cat-9", Qty: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error above limit, got %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if view.Items[0].Qty != 2 {
		t.Fatalf("limit breach must not mutate, got qty %d", view.Items[0].Qty)
	}
}

func TestUpdateQtyRejectsBelowOne(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, _ := fx.svc.CartFor("s")

	err := fx.svc.UpdateQty(ctx, "tok", view.Items[0].ID, 0)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	view, _ = fx.svc.CartFor("s")
	if view.Items[0].Qty != 1 {
		t.Fatalf("qty must be unchanged, got %d", view.Items[0].Qty)
	}
}

func TestUpdateQtyNetworkFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, _ := fx.svc.CartFor("s")

	fx.gw.failNext = pkgerrors.New(pkgerrors.CodeDependency, "cart service request failed")
	err := fx.svc.UpdateQty(ctx, "tok", view.Items[0].ID, 5)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	view, _ = fx.svc.CartFor("s")
	if view.Items[0].Qty != 2 {
		t.Fatalf("expected last-known-good qty 2, got %d", view.Items[0].Qty)
	}
}

func TestUpdateQtyUnknownItem(t *testing.T) {
	fx := newFixture(t, ServiceOptions{})

	err := fx.svc.UpdateQty(context.Background(), "tok", "missing", 2)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveLastItemRemovesCart(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, _ := fx.svc.CartFor("s")

	if err := fx.svc.RemoveItems(ctx, "tok", []string{view.Items[0].ID}); err != nil {
		t.Fatalf("RemoveItems: %v", err)
	}
	if _, ok := fx.svc.CartFor("s"); ok {
		t.Fatal("cart must be removed with its last item")
	}
	if len(fx.svc.Carts()) != 0 {
		t.Fatal("no carts expected")
	}
}

func TestRemoveItemsUnknown(t *testing.T) {
	fx := newFixture(t, ServiceOptions{})

	err := fx.svc.RemoveItems(context.Background(), "tok", []string{"missing"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveCart(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := fx.svc.RemoveCart(ctx, "tok", "s"); err != nil {
		t.Fatalf("RemoveCart: %v", err)
	}
	if _, ok := fx.svc.CartFor("s"); ok {
		t.Fatal("cart must be gone")
	}
	if len(fx.gw.removeCartCalls) != 1 || fx.gw.removeCartCalls[0] != "s" {
		t.Fatalf("expected one remote cart removal, got %+v", fx.gw.removeCartCalls)
	}
}

func TestOfferLifecycle(t *testing.T) {
	ctx := context.Background()
	flat50 := &offers.Offer{
		ID:               "off-1",
		StoreID:          "s",
		MinSubtotalCents: 200,
		Benefit:          offers.Benefit{Type: offers.BenefitFlat, FlatCents: 50},
	}
	fx := newFixture(t, ServiceOptions{Offers: &fakeOffers{offers: map[string]*offers.Offer{"off-1": flat50}}})

	// Matches the reference walkthrough: 100 → 300 → flat 50 → back to 100.
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, _ := fx.svc.CartFor("s")
	if view.SubtotalCents != 100 {
		t.Fatalf("expected subtotal 100, got %d", view.SubtotalCents)
	}
	itemID := view.Items[0].ID

	if err := fx.svc.UpdateQty(ctx, "tok", itemID, 3); err != nil {
		t.Fatalf("qty 3: %v", err)
	}
	if err := fx.svc.ApplyOffer(ctx, "s", "off-1"); err != nil {
		t.Fatalf("ApplyOffer: %v", err)
	}
	view, _ = fx.svc.CartFor("s")
	if view.SubtotalCents != 300 || view.DiscountCents != 50 || view.TotalCents != 250 {
		t.Fatalf("expected 300/50/250, got %d/%d/%d", view.SubtotalCents, view.DiscountCents, view.TotalCents)
	}

	if err := fx.svc.UpdateQty(ctx, "tok", itemID, 1); err != nil {
		t.Fatalf("qty 1: %v", err)
	}
	view, _ = fx.svc.CartFor("s")
	if view.OfferID != "" || view.DiscountCents != 0 || view.TotalCents != 100 {
		t.Fatalf("offer must auto-clear below the qualifier, got %+v", view)
	}
}

func TestOfferAppliedBelowQualifierActivatesLater(t *testing.T) {
	ctx := context.Background()
	pct := &offers.Offer{
		ID:               "off-2",
		StoreID:          "s",
		MinSubtotalCents: 200,
		Benefit:          offers.Benefit{Type: offers.BenefitPercentage, Percent: decimal.NewFromInt(10)},
	}
	fx := newFixture(t, ServiceOptions{Offers: &fakeOffers{offers: map[string]*offers.Offer{"off-2": pct}}})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := fx.svc.ApplyOffer(ctx, "s", "off-2"); err != nil {
		t.Fatalf("ApplyOffer: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if view.OfferID != "off-2" || view.DiscountCents != 0 {
		t.Fatalf("dormant offer must stay selected at discount 0, got %+v", view)
	}

	if err := fx.svc.UpdateQty(ctx, "tok", view.Items[0].ID, 3); err != nil {
		t.Fatalf("qty 3: %v", err)
	}
	view, _ = fx.svc.CartFor("s")
	if view.DiscountCents != 30 || view.TotalCents != 270 {
		t.Fatalf("expected 10%% of 300 without re-selection, got %+v", view)
	}
}

func TestClearOffer(t *testing.T) {
	ctx := context.Background()
	flat := &offers.Offer{ID: "off-3", StoreID: "s", Benefit: offers.Benefit{Type: offers.BenefitFlat, FlatCents: 10}}
	fx := newFixture(t, ServiceOptions{Offers: &fakeOffers{offers: map[string]*offers.Offer{"off-3": flat}}})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := fx.svc.ApplyOffer(ctx, "s", "off-3"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := fx.svc.ClearOffer(ctx, "s"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if view.OfferID != "" || view.DiscountCents != 0 {
		t.Fatalf("expected no offer, got %+v", view)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh service over the same store paints the persisted state.
	svc2, err := NewService(ServiceOptions{
		Gateway:   fx.gw,
		Snapshots: fx.store,
		Sync:      config.SyncConfig{Debounce: time.Hour},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc2.Close()

	if err := svc2.LoadFromStorage(ctx); err != nil {
		t.Fatalf("LoadFromStorage: %v", err)
	}
	view, ok := svc2.CartFor("s")
	if !ok || view.SubtotalCents != 200 {
		t.Fatalf("expected restored cart, got %+v ok=%v", view, ok)
	}
}

func TestLoadFromStorageCorruptPayload(t *testing.T) {
	fx := newFixture(t, ServiceOptions{})
	fx.store.payload = []byte("{not json")

	if err := fx.svc.LoadFromStorage(context.Background()); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if len(fx.svc.Carts()) != 0 {
		t.Fatal("service must stay empty after corrupt snapshot")
	}
}

func TestSyncFromRemoteServerWins(t *testing.T) {
	ctx := context.Background()
	flat := &offers.Offer{ID: "off-4", StoreID: "s", MinSubtotalCents: 100, Benefit: offers.Benefit{Type: offers.BenefitFlat, FlatCents: 20}}
	fx := newFixture(t, ServiceOptions{Offers: &fakeOffers{offers: map[string]*offers.Offer{"off-4": flat}}})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := fx.svc.ApplyOffer(ctx, "s", "off-4"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	fx.gw.fetchResult = []gateway.RemoteCart{
		{StoreID: "s", Items: []gateway.CartItemRecord{{ID: "srv-9", Slug: "latte", Qty: 4, UnitPriceCents: 100}}},
		{StoreID: "other", Items: []gateway.CartItemRecord{{ID: "srv-10", Slug: "chai", Qty: 1, UnitPriceCents: 60}}},
	}
	if err := fx.svc.SyncFromRemote(ctx, "tok"); err != nil {
		t.Fatalf("SyncFromRemote: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if view.Items[0].Qty != 4 || view.SubtotalCents != 400 {
		t.Fatalf("server state must win, got %+v", view)
	}
	if view.OfferID != "off-4" || view.DiscountCents != 20 {
		t.Fatalf("local offer selection must survive the sync, got %+v", view)
	}
	if _, ok := fx.svc.CartFor("other"); !ok {
		t.Fatal("expected cart for second store")
	}
}

func TestSyncFromRemoteDropsVanishedStores(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	fx.gw.fetchResult = nil
	if err := fx.svc.SyncFromRemote(ctx, "tok"); err != nil {
		t.Fatalf("SyncFromRemote: %v", err)
	}
	if len(fx.svc.Carts()) != 0 {
		t.Fatal("stores absent from the server view must be dropped")
	}
}

func TestDebouncedReconciliationCollapses(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{priceBySlug: map[string]int64{}, fetched: make(chan struct{}, 1)}
	fx := newFixture(t, ServiceOptions{Gateway: gw, Sync: config.SyncConfig{Debounce: 30 * time.Millisecond}})

	for i := 0; i < 3; i++ {
		if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	select {
	case <-gw.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a trailing refresh")
	}
	time.Sleep(100 * time.Millisecond)

	gw.mu.Lock()
	fetchCalls := gw.fetchCalls
	gw.mu.Unlock()
	if fetchCalls != 1 {
		t.Fatalf("rapid mutations must collapse to one refresh, got %d", fetchCalls)
	}
}

func TestClearTearsDownState(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})
	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := fx.svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(fx.svc.Carts()) != 0 {
		t.Fatal("expected empty state after logout")
	}
	if fx.store.clears != 1 {
		t.Fatalf("expected one snapshot clear, got %d", fx.store.clears)
	}
}

func TestTotalsInvariant(t *testing.T) {
	ctx := context.Background()
	big := &offers.Offer{ID: "off-5", StoreID: "s", Benefit: offers.Benefit{Type: offers.BenefitFlat, FlatCents: 10_000}}
	fx := newFixture(t, ServiceOptions{Offers: &fakeOffers{offers: map[string]*offers.Offer{"off-5": big}}})

	if err := fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := fx.svc.ApplyOffer(ctx, "s", "off-5"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	view, _ := fx.svc.CartFor("s")
	if view.DiscountCents < 0 || view.DiscountCents > view.SubtotalCents {
		t.Fatalf("discount out of bounds: %+v", view)
	}
	if view.TotalCents != view.SubtotalCents-view.DiscountCents {
		t.Fatalf("total must equal subtotal minus discount: %+v", view)
	}
	if view.TotalCents != 0 {
		t.Fatalf("flat 10000 on subtotal 100 must floor at 0, got %d", view.TotalCents)
	}
}

func TestConcurrentMutationsStayConsistent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, ServiceOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fx.svc.AddItem(ctx, "tok", AddItemInput{StoreID: "s", Slug: "latte", Qty: 1})
		}()
	}
	wg.Wait()

	view, _ := fx.svc.CartFor("s")
	if len(view.Items) != 1 || view.Items[0].Qty != 8 {
		t.Fatalf("expected one line with qty 8, got %+v", view.Items)
	}
	if len(fx.gw.addCalls) != 1 {
		t.Fatalf("expected exactly one remote add, got %d", len(fx.gw.addCalls))
	}
}
