package sim

import "fmt"

// Registry holds open positions keyed by symbol, at most one per symbol.
// Iteration follows insertion order.
type Registry struct {
	order    []string
	bySymbol map[string]*Position
}

func NewRegistry() *Registry {
	return &Registry{bySymbol: map[string]*Position{}}
}

// Insert adds an open position.
func (r *Registry) Insert(p *Position) error {
	if p.Closed() {
		return fmt.Errorf("insert %s: %w", p.Symbol, ErrPositionClosed)
	}
	if _, ok := r.bySymbol[p.Symbol]; ok {
		return fmt.Errorf("insert %s: %w", p.Symbol, ErrDuplicatePosition)
	}
	r.bySymbol[p.Symbol] = p
	r.order = append(r.order, p.Symbol)
	return nil
}

// Remove takes the position for sym out of the registry.
func (r *Registry) Remove(sym string) (*Position, bool) {
	p, ok := r.bySymbol[sym]
	if !ok {
		return nil, false
	}
	delete(r.bySymbol, sym)
	for i, s := range r.order {
		if s == sym {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

func (r *Registry) Has(sym string) bool {
	_, ok := r.bySymbol[sym]
	return ok
}

func (r *Registry) Len() int { return len(r.order) }

// Positions returns the open positions in insertion order. The slice is a
// copy; the positions are not.
func (r *Registry) Positions() []*Position {
	out := make([]*Position, len(r.order))
	for i, s := range r.order {
		out[i] = r.bySymbol[s]
	}
	return out
}
