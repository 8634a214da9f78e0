// internal/preorder/normalize.go
//
// Payload decoding and normalization.
//
// Context
// -------
// The save endpoint accepts one record or an array of records, as JSON or
// as a form-encoded JSON string.  DecodePayload settles the outer shape
// first; Normalize then coerces each field into its canonical form.  The
// batch is atomic: one bad record rejects the whole batch before any write.
//
// Field rules
// -----------
//   • productId, variantId – stringified and trimmed; empty is an error.
//   • enabled              – bool, or exactly "true", "1", or "on"; anything
//                            else (including absent) is false.
//   • expectedDate         – absent/empty → nil; otherwise RFC 3339 or a
//                            bare YYYY-MM-DD (UTC midnight); normalized to
//                            a UTC instant.
//   • limitQuantity        – absent/"" → nil; must coerce to a finite,
//                            positive number; truncated toward zero.
//   • customText           – trimmed; empty → nil.
//   • shopDomain           – from the session, trimmed and lowercased.
package preorder

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateForms are the input layouts the admin UI produces.  Bare dates are
// pinned to UTC midnight.
var dateForms = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DecodePayload settles the outer payload shape: a single JSON object or a
// JSON array of objects.  Anything else is a validation error; an empty
// array is reported as "No payload received".
func DecodePayload(data []byte) ([]Raw, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Message: "No payload received"}
	}

	switch trimmed[0] {
	case '[':
		var raws []Raw
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, &ValidationError{Message: "Invalid payload"}
		}
		if len(raws) == 0 {
			return nil, &ValidationError{Message: "No payload received"}
		}
		return raws, nil
	case '{':
		var raw Raw
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, &ValidationError{Message: "Invalid payload"}
		}
		return []Raw{raw}, nil
	default:
		return nil, &ValidationError{Message: "Invalid payload"}
	}
}

// Normalize converts raw payload records into canonical settings.  The
// shop domain comes from the authenticated session, never from the client,
// which is what prevents cross-shop writes.  Validation is all-or-nothing.
func Normalize(shopDomain string, raws []Raw) ([]Setting, error) {
	shop := strings.ToLower(strings.TrimSpace(shopDomain))

	out := make([]Setting, 0, len(raws))
	for _, raw := range raws {
		rec, err := normalizeOne(shop, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalizeOne(shop string, raw Raw) (Setting, error) {
	productID := coerceID(raw.ProductID)
	variantID := coerceID(raw.VariantID)
	if productID == "" || variantID == "" {
		return Setting{}, &ValidationError{Message: "productId and variantId are required"}
	}

	expected, err := normalizeDate(raw.ExpectedDate)
	if err != nil {
		return Setting{}, err
	}

	limit, err := normalizeQuantity(raw.LimitQuantity)
	if err != nil {
		return Setting{}, err
	}

	text, err := normalizeText(raw.CustomText)
	if err != nil {
		return Setting{}, err
	}

	return Setting{
		ID:            coerceID(raw.ID),
		ShopDomain:    shop,
		ProductID:     productID,
		VariantID:     variantID,
		Enabled:       normalizeEnabled(raw.Enabled),
		ExpectedDate:  expected,
		LimitQuantity: limit,
		CustomText:    text,
	}, nil
}

// coerceID stringifies the identifier shapes the UI actually sends:
// strings and JSON numbers.  Everything else collapses to "" and is caught
// by the required-field check.
func coerceID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// normalizeEnabled maps the checkbox truth values to bool.  The string
// matches are exact and case-sensitive; any other value is false.
func normalizeEnabled(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1" || t == "on"
	default:
		return false
	}
}

func normalizeDate(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		for _, layout := range dateForms {
			if parsed, err := time.Parse(layout, s); err == nil {
				utc := parsed.UTC()
				return &utc, nil
			}
		}
		return nil, &ValidationError{Message: "Invalid expected date"}
	default:
		return nil, &ValidationError{Message: "Invalid expected date"}
	}
}

func normalizeQuantity(v any) (*int, error) {
	var n float64

	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		n = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil, &ValidationError{Message: "Invalid quantity limit"}
		}
		n = parsed
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, &ValidationError{Message: "Invalid quantity limit"}
		}
		n = parsed
	default:
		return nil, &ValidationError{Message: "Invalid quantity limit"}
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, &ValidationError{Message: "Invalid quantity limit"}
	}
	if n <= 0 {
		return nil, &ValidationError{Message: "Quantity limit must be positive"}
	}

	q := int(math.Trunc(n))
	return &q, nil
}

func normalizeText(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, &ValidationError{Message: "Invalid custom text"}
	}
}
