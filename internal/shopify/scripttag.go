// internal/shopify/scripttag.go
//
// Script tag registration.  EnsureScriptTag makes the storefront script
// registration idempotent: it looks up existing tags pointing at our
// script URL and only creates one when none exists.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const scriptTagsQuery = `
query scriptTags($first: Int!) {
  scriptTags(first: $first) {
    edges {
      node {
        id
        src
      }
    }
  }
}`

const scriptTagCreateMutation = `
mutation scriptTagCreate($input: ScriptTagInput!) {
  scriptTagCreate(input: $input) {
    scriptTag { id src }
    userErrors { field message }
  }
}`

// EnsureScriptTag registers scriptURL as a storefront script tag unless
// a tag with that src already exists.  Returns the tag's Shopify ID.
func (c *Client) EnsureScriptTag(ctx context.Context, scriptURL string) (string, error) {
	resp, err := c.Execute(ctx, scriptTagsQuery, map[string]any{"first": 50})
	if err != nil {
		return "", fmt.Errorf("list script tags: %w", err)
	}

	var listing struct {
		ScriptTags struct {
			Edges []struct {
				Node struct {
					ID  string `json:"id"`
					Src string `json:"src"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"scriptTags"`
	}
	if err := json.Unmarshal(resp.Data, &listing); err != nil {
		return "", fmt.Errorf("decode script tags: %w", err)
	}
	for _, edge := range listing.ScriptTags.Edges {
		if edge.Node.Src == scriptURL {
			return edge.Node.ID, nil
		}
	}

	resp, err = c.Execute(ctx, scriptTagCreateMutation, map[string]any{
		"input": map[string]any{
			"src":          scriptURL,
			"displayScope": "ONLINE_STORE",
		},
	})
	if err != nil {
		return "", fmt.Errorf("create script tag: %w", err)
	}

	var created struct {
		ScriptTagCreate struct {
			ScriptTag struct {
				ID string `json:"id"`
			} `json:"scriptTag"`
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"scriptTagCreate"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		return "", fmt.Errorf("decode script tag create: %w", err)
	}
	if len(created.ScriptTagCreate.UserErrors) > 0 {
		msgs := make([]string, len(created.ScriptTagCreate.UserErrors))
		for i, e := range created.ScriptTagCreate.UserErrors {
			msgs[i] = e.Message
		}
		return "", fmt.Errorf("script tag create: %s", strings.Join(msgs, "; "))
	}
	return created.ScriptTagCreate.ScriptTag.ID, nil
}
