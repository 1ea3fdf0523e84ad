package types

import (
	"sort"
	"strings"
)

// Customization is one selected {group, option} pair on a cart item.
// Two additions of the same product with different customization sets are
// distinct cart items.
type Customization struct {
	Group  string `json:"group"`
	Option string `json:"option"`
}

// Customizations is the full selection attached to one cart item.
type Customizations []Customization

// Fingerprint returns an order-insensitive canonical form used for item
// identity matching. An empty selection fingerprints to "".
func (c Customizations) Fingerprint() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c))
	for _, sel := range c {
		group := strings.ToLower(strings.TrimSpace(sel.Group))
		option := strings.ToLower(strings.TrimSpace(sel.Option))
		parts = append(parts, group+"="+option)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// Clone returns a defensive copy.
func (c Customizations) Clone() Customizations {
	if c == nil {
		return nil
	}
	out := make(Customizations, len(c))
	copy(out, c)
	return out
}
