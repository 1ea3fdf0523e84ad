package cart

import (
	"encoding/json"
	"fmt"
	"sort"
)

const snapshotVersion = 1

// snapshotPayload is the on-device serialization of all per-store carts,
// including the selected offer so a cold start can recompute discounts
// without reaching the catalog.
type snapshotPayload struct {
	Version int     `json:"version"`
	Carts   []*Cart `json:"carts"`
}

func encodeSnapshot(carts map[string]*Cart) ([]byte, error) {
	payload := snapshotPayload{Version: snapshotVersion, Carts: make([]*Cart, 0, len(carts))}
	for _, c := range carts {
		payload.Carts = append(payload.Carts, c)
	}
	sort.Slice(payload.Carts, func(i, j int) bool {
		return payload.Carts[i].StoreID < payload.Carts[j].StoreID
	})
	return json.Marshal(payload)
}

func decodeSnapshot(raw []byte) (map[string]*Cart, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if payload.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported cart snapshot version %d", payload.Version)
	}

	carts := make(map[string]*Cart, len(payload.Carts))
	for _, c := range payload.Carts {
		if c == nil || c.StoreID == "" || len(c.Items) == 0 {
			continue
		}
		items := c.Items[:0]
		for _, item := range c.Items {
			if item == nil || item.Qty < 1 {
				continue
			}
			items = append(items, item)
		}
		c.Items = items
		if len(c.Items) == 0 {
			continue
		}
		carts[c.StoreID] = c
	}
	return carts, nil
}
