// Package category defines the fixed set of spend categories and the
// registry used to index spend vectors and per-category rate maps. A
// Registry is an immutable value passed explicitly into the optimizer;
// there is no package-level shared registry.
package category

import "fmt"

// Category represents a single spend category with its internal key and
// display name.
type Category struct {
	Key         string
	DisplayName string
}

// Registry holds an ordered, immutable set of categories.
type Registry struct {
	ordered []Category
	index   map[string]int
}

// NewRegistry constructs a Registry from the provided categories. Keys must
// be non-empty and unique.
func NewRegistry(categories []Category) (Registry, error) {
	index := make(map[string]int, len(categories))
	ordered := make([]Category, len(categories))
	for i, cat := range categories {
		if cat.Key == "" {
			return Registry{}, fmt.Errorf("category at position %d has an empty key", i)
		}
		if _, exists := index[cat.Key]; exists {
			return Registry{}, fmt.Errorf("duplicate category key %q", cat.Key)
		}
		index[cat.Key] = i
		ordered[i] = cat
	}
	return Registry{ordered: ordered, index: index}, nil
}

// Default returns the standard cardmax category set.
func Default() Registry {
	reg, err := NewRegistry([]Category{
		{Key: "dining", DisplayName: "Dining"},
		{Key: "grocery", DisplayName: "Grocery"},
		{Key: "gas_station", DisplayName: "Gas Station"},
		{Key: "pharmacy", DisplayName: "Pharmacy"},
		{Key: "travel_hotels", DisplayName: "Travel & Hotels"},
		{Key: "education", DisplayName: "Education"},
		{Key: "medical_care", DisplayName: "Medical Care"},
		{Key: "online_shopping", DisplayName: "Online Shopping (Local)"},
		{Key: "international_spend", DisplayName: "International Spend"},
		{Key: "other_local_spend", DisplayName: "Other Local Spend"},
	})
	if err != nil {
		// The default set is static; a failure here is a programming error.
		panic(err)
	}
	return reg
}

// Categories returns the categories in registration order.
func (r Registry) Categories() []Category {
	out := make([]Category, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Contains reports whether the registry holds a category with the given key.
func (r Registry) Contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

// DisplayName returns the display name for a key, or the key itself when the
// category is unknown.
func (r Registry) DisplayName(key string) string {
	if i, ok := r.index[key]; ok {
		return r.ordered[i].DisplayName
	}
	return key
}

// Len returns the number of registered categories.
func (r Registry) Len() int {
	return len(r.ordered)
}
