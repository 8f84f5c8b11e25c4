package payment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Stripe caps metadata values at 500 characters.
const cartChunkSize = 450

const cartKeyPrefix = "cart_"

// EncodeCart splits the JSON cart snapshot over cart_0..cart_N metadata keys.
// Chunks end on rune boundaries so every value stays valid UTF-8. Only list
// prices are sent; the webhook re-derives discounts.
func EncodeCart(items []model.CartItem) (map[string]string, error) {
	listed := make([]model.CartItem, len(items))
	for i, item := range items {
		item.DiscountedPrice = nil
		listed[i] = item
	}
	raw, err := json.Marshal(listed)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	meta := make(map[string]string)
	for i := 0; len(raw) > 0; i++ {
		n := min(cartChunkSize, len(raw))
		for n < len(raw) && n > 0 && !utf8.RuneStart(raw[n]) {
			n--
		}
		meta[cartKeyPrefix+strconv.Itoa(i)] = string(raw[:n])
		raw = raw[n:]
	}
	return meta, nil
}

// DecodeCart reassembles the cart written by EncodeCart.
func DecodeCart(meta map[string]string) ([]model.CartItem, error) {
	var indexes []int
	for key := range meta {
		suffix, ok := strings.CutPrefix(key, cartKeyPrefix)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		indexes = append(indexes, idx)
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("metadata carries no cart")
	}
	sort.Ints(indexes)

	var b strings.Builder
	for i, idx := range indexes {
		if idx != i {
			return nil, fmt.Errorf("cart chunk %d missing", i)
		}
		b.WriteString(meta[cartKeyPrefix+strconv.Itoa(idx)])
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(b.String()), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}
