package models

// Cart is the transient per-session selection of dishes: dish ID to
// quantity. It lives only in the user's session and is never written to
// the database; materializing it into an Order empties it.
type Cart map[uint]int

// Add increments the quantity for an existing entry or inserts it with
// quantity 1.
func (c Cart) Add(dishID uint) {
	c[dishID]++
}

// SetQuantity sets the quantity for a dish. A quantity of zero or less
// removes the entry.
func (c Cart) SetQuantity(dishID uint, quantity int) {
	if quantity > 0 {
		c[dishID] = quantity
		return
	}
	delete(c, dishID)
}

// Remove deletes the entry unconditionally. Removing an absent entry is
// a no-op.
func (c Cart) Remove(dishID uint) {
	delete(c, dishID)
}

// IsEmpty reports whether the cart has no entries
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}
