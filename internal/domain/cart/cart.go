// Package cart holds the session-scoped shopping cart: an observable state
// store with a narrow mutation API. Every mutation is visible to all
// subscribers before the mutating call returns.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jarodlopez/homemartshop/internal/domain/discount"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
)

// LineItem is a product plus the quantity of it currently in the cart.
type LineItem struct {
	store.Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price*quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is a point-in-time copy of the cart state handed to subscribers
// and to the checkout sequence.
type Snapshot struct {
	Open     bool               `json:"open"`
	Items    []LineItem         `json:"items"`
	Discount *discount.Discount `json:"discount"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Total    decimal.Decimal    `json:"total"`
	Count    int                `json:"count"`
}

// Listener receives a snapshot after every mutation.
type Listener func(Snapshot)

// Store is the cart state container. One instance per session; init is an
// empty, closed cart.
type Store struct {
	mu        sync.Mutex
	open      bool
	frozen    bool
	items     []LineItem // ordered, product IDs unique
	applied   *discount.Discount
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Subscribe registers a listener and returns an unsubscribe func. The
// listener is invoked synchronously on every mutation.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Add puts a product into the cart: an existing line item gains quantity 1,
// otherwise a new line item with quantity 1 is appended. The cart is marked
// open. Never fails.
func (s *Store) Add(p store.Product) {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return
	}

	found := false
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{Product: p, Quantity: 1})
	}
	s.open = true
	s.notifyLocked()
}

// UpdateQuantity adjusts a line item's quantity by delta, flooring at 1.
// The floor never removes the item; removal is only explicit. No-op on
// unknown id.
func (s *Store) UpdateQuantity(id string, delta int) {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return
	}

	changed := false
	for i := range s.items {
		if s.items[i].ID == id {
			q := s.items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			s.items[i].Quantity = q
			changed = true
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.notifyLocked()
}

// Remove deletes the line item with the given product id. No-op if absent.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.notifyLocked()
			return
		}
	}
	s.mu.Unlock()
}

// SetOpen toggles the cart visibility flag.
func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return
	}
	s.open = open
	s.notifyLocked()
}

// ApplyDiscountCode resolves the code and, on success, replaces the applied
// discount. An unknown code leaves the current discount untouched and
// reports false.
func (s *Store) ApplyDiscountCode(code string) bool {
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return false
	}

	d, ok := discount.Resolve(code)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.applied = d
	s.notifyLocked()
	return true
}

// Freeze blocks all mutations while a checkout is in flight.
func (s *Store) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Unfreeze re-enables mutations.
func (s *Store) Unfreeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = false
}

// Snapshot returns a copy of the current state with derived values.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subtotal is the exact sum of price*quantity over current line items.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// Total is the subtotal with the applied discount, if any.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return discount.Total(s.subtotalLocked(), s.applied)
}

// Count is the total quantity across line items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, li := range s.items {
		count += li.Quantity
	}
	return count
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Discount returns the currently applied discount, or nil.
func (s *Store) Discount() *discount.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// IsOpen reports the cart visibility flag.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, li := range s.items {
		subtotal = subtotal.Add(li.Subtotal())
	}
	return subtotal
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	subtotal := s.subtotalLocked()

	count := 0
	for _, li := range s.items {
		count += li.Quantity
	}

	return Snapshot{
		Open:     s.open,
		Items:    items,
		Discount: s.applied,
		Subtotal: subtotal,
		Total:    discount.Total(subtotal, s.applied),
		Count:    count,
	}
}

// notifyLocked snapshots the state, releases the lock and invokes every
// listener before returning, so the mutation is fully propagated by the time
// the mutating call finishes.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
