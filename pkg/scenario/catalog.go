package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Catalog is a validated, immutable set of scenarios. Selection is a
// deterministic function of the seed, so a session can be replayed.
type Catalog struct {
	scenarios []Scenario
	byID      map[string]int
}

// LoadCatalog reads a JSON array of scenario objects from path and
// validates every record. Loading is all-or-nothing: one bad record
// invalidates the whole catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSource, path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog validates a raw JSON catalog. Split out from LoadCatalog
// so tests and other sources can feed bytes directly.
func ParseCatalog(data []byte) (*Catalog, error) {
	var records []Scenario
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: catalog must be a JSON array of objects: %v", ErrSource, err)
	}

	byID := make(map[string]int, len(records))
	for i, s := range records {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: record %d is missing an id", ErrValidation, i)
		}
		if s.Prompt == "" {
			return nil, fmt.Errorf("%w: scenario %q is missing a prompt", ErrValidation, s.ID)
		}
		if s.Hint == "" {
			return nil, fmt.Errorf("%w: scenario %q is missing a hint", ErrValidation, s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario id %q", ErrValidation, s.ID)
		}
		byID[s.ID] = i
	}

	return &Catalog{scenarios: records, byID: byID}, nil
}

// Len reports the number of scenarios in the catalog.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}

// All returns a copy of every scenario in catalog order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	copy(out, c.scenarios)
	return out
}

// ByID returns the scenario with the given id.
func (c *Catalog) ByID(id string) (Scenario, error) {
	i, ok := c.byID[id]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.scenarios[i], nil
}

// SelectUnique returns n distinct scenarios chosen by a seeded
// permutation of catalog order. The same (catalog, n, seed) triple
// always yields the same ordered result.
func (c *Catalog) SelectUnique(n int, seed int64) ([]Scenario, error) {
	if n <= 0 {
		return nil, fmt.Errorf("selection count must be positive, got %d", n)
	}
	if n > len(c.scenarios) {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrInsufficientScenarios, n, len(c.scenarios))
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(c.scenarios))

	selected := make([]Scenario, n)
	for i := 0; i < n; i++ {
		selected[i] = c.scenarios[perm[i]]
	}
	return selected, nil
}
