package cart

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/jaldistore/cart-engine/internal/catalog"
	"github.com/jaldistore/cart-engine/internal/gateway"
	"github.com/jaldistore/cart-engine/internal/snapshot"
	"github.com/jaldistore/cart-engine/pkg/config"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
	"github.com/jaldistore/cart-engine/pkg/logger"
	"github.com/jaldistore/cart-engine/pkg/metrics"
	"github.com/jaldistore/cart-engine/pkg/types"
)

// AddItemInput carries the fields of one add-item mutation.
type AddItemInput struct {
	StoreID        string
	Slug           string
	CatalogID      string
	Qty            int
	Customizable   bool
	Customizations types.Customizations
}

// ServiceOptions wires the service's collaborators.
type ServiceOptions struct {
	Logger    *logger.Logger
	Gateway   gateway.API
	Offers    catalog.OfferSource
	Limits    catalog.LimitSource
	Snapshots snapshot.Store
	Metrics   *metrics.CartMetrics
	Sync      config.SyncConfig
}

// Service is the single owner of all per-store carts. It applies mutations
// optimistically only after the remote cart service confirms them, evaluates
// the selected offer on every subtotal change, persists a snapshot after each
// confirmed mutation, and schedules a debounced authoritative refresh.
//
// Mutations against the same cart item are serialized; different items and
// different stores proceed concurrently. A failed call leaves in-memory state
// at its last-known-good value and is never partially applied.
type Service struct {
	logg      *logger.Logger
	gw        gateway.API
	offerSrc  catalog.OfferSource
	limits    catalog.LimitSource
	snapshots snapshot.Store
	metrics   *metrics.CartMetrics

	mu    sync.RWMutex
	carts map[string]*Cart

	items *keyedMutex
	recon *reconciler
}

// NewService builds the cart service. Gateway and Snapshots are required;
// Limits and Offers may be nil when the catalog collaborator is absent, in
// which case quantities are unbounded and offers cannot be applied.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service requires a gateway")
	}
	if opts.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service requires a snapshot store")
	}
	debounce := opts.Sync.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	timeout := opts.Sync.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Service{
		logg:      opts.Logger,
		gw:        opts.Gateway,
		offerSrc:  opts.Offers,
		limits:    opts.Limits,
		snapshots: opts.Snapshots,
		metrics:   opts.Metrics,
		carts:     map[string]*Cart{},
		items:     newKeyedMutex(),
	}
	s.recon = newReconciler(debounce, timeout, func(ctx context.Context, token string) {
		if err := s.SyncFromRemote(ctx, token); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "debounced cart refresh failed: "+err.Error())
		}
	})
	return s, nil
}

// Carts returns read-only views of every cart, ordered by store.
func (s *Service) Carts() []View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]View, 0, len(s.carts))
	for _, c := range s.carts {
		views = append(views, c.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].StoreID < views[j].StoreID })
	return views
}

// CartFor returns the view of one store's cart, if it exists.
func (s *Service) CartFor(storeID string) (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[storeID]
	if !ok {
		return View{}, false
	}
	return c.view(), true
}

// AddItem adds qty units of a product to the store's cart. An identical
// (store, slug, customizations) line is incremented rather than duplicated.
func (s *Service) AddItem(ctx context.Context, token string, in AddItemInput) error {
	err := s.addItem(ctx, token, in)
	s.metrics.ObserveMutation("add_item", err == nil)
	return err
}

func (s *Service) addItem(ctx context.Context, token string, in AddItemInput) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if strings.TrimSpace(in.StoreID) == "" || strings.TrimSpace(in.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and slug are required")
	}
	if in.Qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	identity := itemIdentity(in.Slug, in.Customizations)
	unlock := s.items.Lock(in.StoreID + "\x00" + identity)
	defer unlock()

	s.mu.RLock()
	var existingID string
	var existingQty int
	if c, ok := s.carts[in.StoreID]; ok {
		if item := c.findByIdentity(identity); item != nil {
			existingID = item.ID
			existingQty = item.Qty
		}
	}
	s.mu.RUnlock()

	targetQty := existingQty + in.Qty
	if err := s.checkLimit(ctx, in.CatalogID, targetQty); err != nil {
		return err
	}

	if existingID != "" {
		unlockItem := s.items.Lock(existingID)
		defer unlockItem()
		if err := s.gw.UpdateQty(ctx, token, existingID, targetQty); err != nil {
			return err
		}
		s.mu.Lock()
		if c, ok := s.carts[in.StoreID]; ok {
			if item := c.findByID(existingID); item != nil {
				item.Qty = targetQty
			}
			c.revalidateOffer()
		}
		s.mu.Unlock()
	} else {
		record, err := s.gw.AddItem(ctx, token, gateway.AddItemRequest{
			StoreID:        in.StoreID,
			Slug:           in.Slug,
			CatalogID:      in.CatalogID,
			Qty:            in.Qty,
			Customizable:   in.Customizable,
			Customizations: in.Customizations,
		})
		if err != nil {
			return err
		}
		item := itemFromRecord(*record)
		if len(item.Customizations) == 0 {
			item.Customizations = in.Customizations.Clone()
		}
		s.mu.Lock()
		c, ok := s.carts[in.StoreID]
		if !ok {
			c = &Cart{StoreID: in.StoreID}
			s.carts[in.StoreID] = c
		}
		c.Items = append(c.Items, item)
		c.revalidateOffer()
		s.mu.Unlock()
	}

	s.persist(ctx)
	s.recon.Schedule(token)
	return nil
}

// UpdateQty sets an item's absolute quantity. Quantities below 1 are
// rejected; callers wanting zero must remove the item instead.
func (s *Service) UpdateQty(ctx context.Context, token, cartItemID string, qty int) error {
	err := s.updateQty(ctx, token, cartItemID, qty)
	s.metrics.ObserveMutation("update_qty", err == nil)
	return err
}

func (s *Service) updateQty(ctx context.Context, token, cartItemID string, qty int) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if strings.TrimSpace(cartItemID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1; remove the item instead")
	}

	unlock := s.items.Lock(cartItemID)
	defer unlock()

	s.mu.RLock()
	storeID, catalogID := "", ""
	for _, c := range s.carts {
		if item := c.findByID(cartItemID); item != nil {
			storeID = c.StoreID
			catalogID = item.CatalogID
			break
		}
	}
	s.mu.RUnlock()
	if storeID == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if err := s.checkLimit(ctx, catalogID, qty); err != nil {
		return err
	}
	if err := s.gw.UpdateQty(ctx, token, cartItemID, qty); err != nil {
		return err
	}

	s.mu.Lock()
	if c, ok := s.carts[storeID]; ok {
		if item := c.findByID(cartItemID); item != nil {
			item.Qty = qty
		}
		c.revalidateOffer()
	}
	s.mu.Unlock()

	s.persist(ctx)
	s.recon.Schedule(token)
	return nil
}

// RemoveItems deletes the given lines. A cart whose last item is removed is
// removed entirely.
func (s *Service) RemoveItems(ctx context.Context, token string, cartItemIDs []string) error {
	err := s.removeItems(ctx, token, cartItemIDs)
	s.metrics.ObserveMutation("remove_items", err == nil)
	return err
}

func (s *Service) removeItems(ctx context.Context, token string, cartItemIDs []string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if len(cartItemIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one cart item id is required")
	}

	s.mu.RLock()
	known := make([]string, 0, len(cartItemIDs))
	for _, id := range cartItemIDs {
		for _, c := range s.carts {
			if c.findByID(id) != nil {
				known = append(known, id)
				break
			}
		}
	}
	s.mu.RUnlock()
	if len(known) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no matching cart items")
	}

	// Lock in sorted order so overlapping batches cannot deadlock.
	sort.Strings(known)
	for _, id := range known {
		unlock := s.items.Lock(id)
		defer unlock()
	}

	if err := s.gw.RemoveItems(ctx, token, known); err != nil {
		return err
	}

	s.mu.Lock()
	for _, id := range known {
		for storeID, c := range s.carts {
			if c.removeByID(id) {
				if len(c.Items) == 0 {
					delete(s.carts, storeID)
				} else {
					c.revalidateOffer()
				}
				break
			}
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	s.recon.Schedule(token)
	return nil
}

// RemoveCart drops the whole per-store cart, local and remote.
func (s *Service) RemoveCart(ctx context.Context, token, storeID string) error {
	err := s.removeCart(ctx, token, storeID)
	s.metrics.ObserveMutation("remove_cart", err == nil)
	return err
}

func (s *Service) removeCart(ctx context.Context, token, storeID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if strings.TrimSpace(storeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	if err := s.gw.RemoveCart(ctx, token, storeID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.carts, storeID)
	s.mu.Unlock()

	s.persist(ctx)
	s.recon.Schedule(token)
	return nil
}

// ApplyOffer selects an offer for the store's cart. Selection is local only;
// it reaches the catalog for the offer definition but never the cart service.
// A selection below the qualifying minimum sits at discount 0 until the
// subtotal crosses the threshold.
func (s *Service) ApplyOffer(ctx context.Context, storeID, offerID string) error {
	err := s.applyOffer(ctx, storeID, offerID)
	s.metrics.ObserveMutation("apply_offer", err == nil)
	return err
}

func (s *Service) applyOffer(ctx context.Context, storeID, offerID string) error {
	if strings.TrimSpace(storeID) == "" || strings.TrimSpace(offerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and offer id are required")
	}
	if s.offerSrc == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "offer source is not configured")
	}

	offer, err := s.offerSrc.GetOffer(ctx, storeID, offerID)
	if err != nil {
		return err
	}
	if offer.StoreID != "" && offer.StoreID != storeID {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer belongs to a different store")
	}

	s.mu.Lock()
	c, ok := s.carts[storeID]
	if !ok {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found for store")
	}
	c.Applied = &AppliedOffer{Offer: offer}
	c.revalidateOffer()
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// ClearOffer deselects the store cart's offer.
func (s *Service) ClearOffer(ctx context.Context, storeID string) error {
	err := s.clearOffer(ctx, storeID)
	s.metrics.ObserveMutation("clear_offer", err == nil)
	return err
}

func (s *Service) clearOffer(ctx context.Context, storeID string) error {
	if strings.TrimSpace(storeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	s.mu.Lock()
	c, ok := s.carts[storeID]
	if !ok {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found for store")
	}
	c.Applied = nil
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// LoadFromStorage populates in-memory state from the persisted snapshot for
// an immediate first paint. A missing snapshot is not an error; a corrupt one
// is reported and the service starts empty.
func (s *Service) LoadFromStorage(ctx context.Context) error {
	raw, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	carts, err := decodeSnapshot(raw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cart snapshot unreadable")
	}
	for _, c := range carts {
		c.revalidateOffer()
	}

	s.mu.Lock()
	s.carts = carts
	s.mu.Unlock()
	return nil
}

// SyncFromRemote replaces in-memory carts with the server's authoritative
// view. Locally selected offers survive for stores the server still returns
// and are re-validated against the new subtotals.
func (s *Service) SyncFromRemote(ctx context.Context, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}

	start := time.Now()
	remote, err := s.gw.FetchCart(ctx, token)
	if err != nil {
		s.metrics.IncSyncFailure()
		return err
	}

	fresh := make(map[string]*Cart, len(remote))
	for _, rc := range remote {
		if rc.StoreID == "" {
			continue
		}
		c := &Cart{StoreID: rc.StoreID}
		for _, record := range rc.Items {
			if record.Qty < 1 {
				continue
			}
			c.Items = append(c.Items, itemFromRecord(record))
		}
		if len(c.Items) == 0 {
			continue
		}
		fresh[rc.StoreID] = c
	}

	s.mu.Lock()
	for storeID, c := range fresh {
		if old, ok := s.carts[storeID]; ok && old.Applied != nil {
			c.Applied = old.Applied
		}
		c.revalidateOffer()
	}
	s.carts = fresh
	s.mu.Unlock()

	s.metrics.ObserveSyncDuration(time.Since(start))
	s.persist(ctx)
	return nil
}

// Clear tears down all local cart state on logout: pending refreshes are
// dropped, in-memory carts emptied, and the snapshot removed. The remote cart
// is left untouched.
func (s *Service) Clear(ctx context.Context) error {
	s.recon.Cancel()

	s.mu.Lock()
	s.carts = map[string]*Cart{}
	s.mu.Unlock()

	var errs error
	if err := s.snapshots.Clear(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Close stops the reconciler. The service must not be used afterwards.
func (s *Service) Close() error {
	s.recon.Stop()
	return nil
}

func (s *Service) checkLimit(ctx context.Context, catalogID string, qty int) error {
	if s.limits == nil || strings.TrimSpace(catalogID) == "" {
		return nil
	}
	max, err := s.limits.MaxQty(ctx, catalogID)
	if err != nil {
		return err
	}
	if max > 0 && qty > max {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the product's purchase limit")
	}
	return nil
}

// persist writes the snapshot after a confirmed mutation. Failures are
// reported but never undo the mutation; the remote cart already holds it.
func (s *Service) persist(ctx context.Context) {
	s.mu.RLock()
	raw, err := encodeSnapshot(s.carts)
	s.mu.RUnlock()
	if err == nil {
		err = s.snapshots.Save(ctx, raw)
	}
	if err != nil {
		s.metrics.IncSnapshotFailure()
		if s.logg != nil {
			s.logg.Warn(ctx, "cart snapshot write failed: "+err.Error())
		}
	}
}

func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart credential is required")
	}
	return nil
}

func itemFromRecord(record gateway.CartItemRecord) *Item {
	return &Item{
		ID:                record.ID,
		Slug:              record.Slug,
		CatalogID:         record.CatalogID,
		Qty:               record.Qty,
		UnitPriceCents:    record.UnitPriceCents,
		UnitMaxPriceCents: record.UnitMaxPriceCents,
		Customizable:      record.Customizable,
		Customizations:    record.Customizations.Clone(),
	}
}
