// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

// Counts is a string multiset that remembers the order in which keys were
// first added. The zero value is ready to use.
type Counts struct {
	keys []string
	vals map[string]int
}

// NewCounts returns an empty Counts.
func NewCounts() *Counts {
	return &Counts{vals: make(map[string]int)}
}

// Add increases key's count by n. Non-positive n is ignored so counts never
// decrease.
func (c *Counts) Add(key string, n int) {
	if n <= 0 {
		return
	}
	if c.vals == nil {
		c.vals = make(map[string]int)
	}
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key] += n
}

// Inc increases key's count by one.
func (c *Counts) Inc(key string) { c.Add(key, 1) }

// Get returns the count for key, zero when absent.
func (c *Counts) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.vals[key]
}

// Len returns the number of distinct keys.
func (c *Counts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in first-seen order.
func (c *Counts) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Map returns a copy of the counts.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, c.Len())
	if c == nil {
		return out
	}
	for k, v := range c.vals {
		out[k] = v
	}
	return out
}

// Resolve returns the key with the highest count. Ties go to the key that
// was first added, so the result depends only on observation order. An
// empty or nil Counts resolves to sentinel.
func Resolve(c *Counts, sentinel string) string {
	if c.Len() == 0 {
		return sentinel
	}
	best, bestN := "", 0
	for _, k := range c.keys {
		if n := c.vals[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best
}
