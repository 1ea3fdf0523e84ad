package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jaldistore/cart-engine/internal/offers"
	"github.com/jaldistore/cart-engine/pkg/config"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
)

// Client fetches offer definitions and purchase limits from the catalog
// collaborator over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a catalog client from configuration.
func NewClient(cfg config.CatalogConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type offerPayload struct {
	ID        string `json:"id"`
	StoreID   string `json:"store_id"`
	Qualifier struct {
		MinValueCents int64 `json:"min_value_cents"`
	} `json:"qualifier"`
	Benefit struct {
		Type      string `json:"type"`
		Percent   string `json:"percent,omitempty"`
		CapCents  int64  `json:"cap_cents,omitempty"`
		FlatCents int64  `json:"flat_cents,omitempty"`
	} `json:"benefit"`
}

type limitPayload struct {
	MaxQty int `json:"max_qty"`
}

// GetOffer resolves one offer definition for the given store.
func (c *Client) GetOffer(ctx context.Context, storeID, offerID string) (*offers.Offer, error) {
	if strings.TrimSpace(storeID) == "" || strings.TrimSpace(offerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and offer id are required")
	}

	url := fmt.Sprintf("%s/v1/stores/%s/offers/%s", c.baseURL, storeID, offerID)
	var payload offerPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	benefitType := offers.ParseBenefitType(payload.Benefit.Type)
	if !benefitType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog returned unknown benefit type")
	}

	offer := &offers.Offer{
		ID:               payload.ID,
		StoreID:          payload.StoreID,
		MinSubtotalCents: payload.Qualifier.MinValueCents,
		Benefit: offers.Benefit{
			Type:      benefitType,
			CapCents:  payload.Benefit.CapCents,
			FlatCents: payload.Benefit.FlatCents,
		},
	}
	if benefitType == offers.BenefitPercentage {
		percent, err := parsePercent(payload.Benefit.Percent)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog returned invalid percent")
		}
		offer.Benefit.Percent = percent
	}
	return offer, nil
}

// MaxQty returns the purchase limit for the catalog product, 0 when unbounded.
func (c *Client) MaxQty(ctx context.Context, catalogID string) (int, error) {
	if strings.TrimSpace(catalogID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "catalog id is required")
	}

	url := fmt.Sprintf("%s/v1/products/%s/limits", c.baseURL, catalogID)
	var payload limitPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if payload.MaxQty < 0 {
		return 0, nil
	}
	return payload.MaxQty, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog resource not found")
	case resp.StatusCode != http.StatusOK:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}
	return nil
}
