package tip

import (
	"fmt"
	"slices"
)

// Collection is the full ordered set of tips, in insertion order.
//
// A collection is loaded whole, mutated in memory and written back whole.
// Two invocations working on the same collection file race and the last
// writer wins; nothing detects this.
type Collection struct {
	Tips []Tip
}

// Len returns the number of tips.
func (c *Collection) Len() int {
	return len(c.Tips)
}

// Index returns the position of the tip with the given id, or -1.
func (c *Collection) Index(id uint64) int {
	return slices.IndexFunc(c.Tips, func(t Tip) bool {
		return t.Metadata.ID == id
	})
}

// Find returns a pointer into the collection for the tip with the given id.
// The pointer is invalidated by Add and Remove.
func (c *Collection) Find(id uint64) (*Tip, error) {
	idx := c.Index(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %d", ErrTipNotFound, id)
	}

	return &c.Tips[idx], nil
}

// NextID returns one past the highest id in the collection.
//
// The highest id is searched for rather than read off the last tip, since
// insertion order and id order are allowed to diverge. An empty collection
// has no id to count from and yields ErrEmptyCollection.
func (c *Collection) NextID() (uint64, error) {
	if len(c.Tips) == 0 {
		return 0, ErrEmptyCollection
	}

	var highest uint64
	for _, t := range c.Tips {
		highest = max(highest, t.Metadata.ID)
	}

	return highest + 1, nil
}

// Add appends t. Its id must already be assigned and unused.
func (c *Collection) Add(t Tip) error {
	if c.Index(t.Metadata.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, t.Metadata.ID)
	}

	c.Tips = append(c.Tips, t)

	return nil
}

// Remove deletes the tip with the given id and returns it. Remaining tips
// keep their order and ids. Removed ids below the highest are never handed
// out again, but removing the highest id frees it: ids are strictly
// max+1, not a persisted counter.
func (c *Collection) Remove(id uint64) (Tip, error) {
	idx := c.Index(id)
	if idx < 0 {
		return Tip{}, fmt.Errorf("%w: %d", ErrTipNotFound, id)
	}

	removed := c.Tips[idx]
	c.Tips = slices.Delete(c.Tips, idx, idx+1)

	return removed, nil
}

// Validate checks that ids are unique.
func (c *Collection) Validate() error {
	seen := make(map[uint64]bool, len(c.Tips))

	for _, t := range c.Tips {
		if seen[t.Metadata.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, t.Metadata.ID)
		}

		seen[t.Metadata.ID] = true
	}

	return nil
}
