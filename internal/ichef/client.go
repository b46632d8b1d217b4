// Package ichef fetches the shop's online-ordering menu snapshot, which the
// shop abuses as its published staff roster (one category per shift, one
// menu item per staff member).
package ichef

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fairybot/internal/roster"
	logx "fairybot/pkg/logx"
)

const (
	DefaultBaseURL  = "https://shop.ichefpos.com/api/graphql/online_restaurant"
	DefaultPublicID = "WqxdHUPa"

	defaultTimeout = 15 * time.Second
)

type Config struct {
	BaseURL  string
	PublicID string
	// Timeout bounds each HTTP call. Fetch and delivery share the poll
	// loop, so an unbounded call would stall the whole cycle.
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	log  logx.Logger
	http *http.Client
}

func New(cfg Config, log logx.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PublicID == "" {
		cfg.PublicID = DefaultPublicID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{cfg: cfg, log: log, http: &http.Client{Timeout: cfg.Timeout}}
}

// FetchRoster chains the two snapshot operations: current menu-hours
// snapshot -> category snapshot uuids -> categories with items.
//
// An upstream without a published snapshot yields an empty slice, not an
// error; callers treat both errors and empty results as "no data".
func (c *Client) FetchRoster(ctx context.Context) ([]roster.Category, error) {
	uuids, err := c.fetchMenuHours(ctx)
	if err != nil {
		return nil, err
	}
	if len(uuids) == 0 {
		c.log.Debug("no menu-hours snapshot published")
		return nil, nil
	}
	return c.fetchCategories(ctx, uuids)
}

const menuHoursQuery = `query menuHoursSnapshotQuery($publicId: String!, $platformType: PlatformTypes!) {
  restaurant(publicId: $publicId) {
    onlineOrderingMenu(platformType: $platformType) {
      menuHoursSnapshot {
        categorySnapshotUuids
      }
    }
  }
}`

const categoriesQuery = `query restaurantMenuItemCategoriesQuery($publicId: String, $categoriesSnapshotUuids: [UUID!]!) {
  restaurant(publicId: $publicId) {
    menu {
      categoriesSnapshot(uuids: $categoriesSnapshotUuids) {
        name
        menuItemSnapshot {
          name
        }
      }
    }
  }
}`

type gqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type menuHoursResponse struct {
	Data struct {
		Restaurant struct {
			OnlineOrderingMenu struct {
				MenuHoursSnapshot []struct {
					CategorySnapshotUuids []string `json:"categorySnapshotUuids"`
				} `json:"menuHoursSnapshot"`
			} `json:"onlineOrderingMenu"`
		} `json:"restaurant"`
	} `json:"data"`
}

type categoriesResponse struct {
	Data struct {
		Restaurant struct {
			Menu struct {
				CategoriesSnapshot []struct {
					Name             string `json:"name"`
					MenuItemSnapshot []struct {
						Name string `json:"name"`
					} `json:"menuItemSnapshot"`
				} `json:"categoriesSnapshot"`
			} `json:"menu"`
		} `json:"restaurant"`
	} `json:"data"`
}

func (c *Client) fetchMenuHours(ctx context.Context) ([]string, error) {
	var resp menuHoursResponse
	err := c.do(ctx, "menuHoursSnapshotQuery", menuHoursQuery, map[string]any{
		"publicId":     c.cfg.PublicID,
		"platformType": "ICHEF",
	}, &resp)
	if err != nil {
		return nil, err
	}

	snapshots := resp.Data.Restaurant.OnlineOrderingMenu.MenuHoursSnapshot
	if len(snapshots) == 0 {
		return nil, nil
	}
	return snapshots[0].CategorySnapshotUuids, nil
}

func (c *Client) fetchCategories(ctx context.Context, uuids []string) ([]roster.Category, error) {
	var resp categoriesResponse
	err := c.do(ctx, "restaurantMenuItemCategoriesQuery", categoriesQuery, map[string]any{
		"publicId":                c.cfg.PublicID,
		"categoriesSnapshotUuids": uuids,
	}, &resp)
	if err != nil {
		return nil, err
	}

	snap := resp.Data.Restaurant.Menu.CategoriesSnapshot
	cats := make([]roster.Category, 0, len(snap))
	for _, cs := range snap {
		items := make([]string, 0, len(cs.MenuItemSnapshot))
		for _, it := range cs.MenuItemSnapshot {
			items = append(items, it.Name)
		}
		cats = append(cats, roster.Category{Name: cs.Name, Items: items})
	}
	return cats, nil
}

func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{
		OperationName: operation,
		Variables:     variables,
		Query:         query,
	})
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", operation, err)
	}

	reqURL := c.cfg.BaseURL + "?op=" + url.QueryEscape(operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("cache-control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", operation, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}
