// internal/shopify/queries.go
//
// Typed wrappers for the Admin GraphQL queries the dashboard needs.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Shop is the subset of shop fields shown on the dashboard.
type Shop struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
	Email           string `json:"email"`
	PlanDisplayName string `json:"planDisplayName"`
}

// Product is a product summary with its first variants.
type Product struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Status   string           `json:"status"`
	Variants []ProductVariant `json:"variants"`
}

// ProductVariant is one variant line under a product.
type ProductVariant struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventoryQuantity"`
}

const shopInfoQuery = `
query shopInfo {
  shop {
    name
    myshopifyDomain
    email
    plan { displayName }
  }
}`

// ShopInfo fetches the shop's display details.
func (c *Client) ShopInfo(ctx context.Context) (*Shop, error) {
	resp, err := c.Execute(ctx, shopInfoQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("shop info: %w", err)
	}

	var doc struct {
		Shop struct {
			Name            string `json:"name"`
			MyshopifyDomain string `json:"myshopifyDomain"`
			Email           string `json:"email"`
			Plan            struct {
				DisplayName string `json:"displayName"`
			} `json:"plan"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode shop info: %w", err)
	}

	return &Shop{
		Name:            doc.Shop.Name,
		MyshopifyDomain: doc.Shop.MyshopifyDomain,
		Email:           doc.Shop.Email,
		PlanDisplayName: doc.Shop.Plan.DisplayName,
	}, nil
}

const recentProductsQuery = `
query recentProducts($first: Int!) {
  products(first: $first, sortKey: UPDATED_AT, reverse: true) {
    edges {
      node {
        id
        title
        status
        variants(first: 10) {
          edges {
            node {
              id
              title
              price
              inventoryQuantity
            }
          }
        }
      }
    }
  }
}`

// RecentProducts fetches the most recently updated products, newest
// first, with up to ten variants each.
func (c *Client) RecentProducts(ctx context.Context, first int) ([]Product, error) {
	resp, err := c.Execute(ctx, recentProductsQuery, map[string]any{"first": first})
	if err != nil {
		return nil, fmt.Errorf("recent products: %w", err)
	}

	var doc struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID       string `json:"id"`
					Title    string `json:"title"`
					Status   string `json:"status"`
					Variants struct {
						Edges []struct {
							Node ProductVariant `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode recent products: %w", err)
	}

	products := make([]Product, 0, len(doc.Products.Edges))
	for _, edge := range doc.Products.Edges {
		p := Product{
			ID:     edge.Node.ID,
			Title:  edge.Node.Title,
			Status: edge.Node.Status,
		}
		for _, v := range edge.Node.Variants.Edges {
			p.Variants = append(p.Variants, v.Node)
		}
		products = append(products, p)
	}
	return products, nil
}
