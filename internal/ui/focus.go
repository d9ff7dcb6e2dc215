package ui

// Navigator tracks the active page and rotates through pages with tab and
// shift+tab.
type Navigator struct {
	Current  Page
	Order    []Page
	OnChange func(from, to Page)
}

// NewNavigator starts on the first page of order.
func NewNavigator(order []Page) *Navigator {
	n := &Navigator{Order: order}
	if len(order) > 0 {
		n.Current = order[0]
	}
	return n
}

func (n *Navigator) index() int {
	for i, p := range n.Order {
		if p == n.Current {
			return i
		}
	}
	return -1
}

// Next moves to the following page, wrapping around, and returns it.
func (n *Navigator) Next() Page {
	if len(n.Order) == 0 {
		return n.Current
	}
	n.move(n.Order[(n.index()+1)%len(n.Order)])
	return n.Current
}

// Prev moves to the preceding page, wrapping around, and returns it.
func (n *Navigator) Prev() Page {
	if len(n.Order) == 0 {
		return n.Current
	}
	i := n.index() - 1
	if i < 0 {
		i = len(n.Order) - 1
	}
	n.move(n.Order[i])
	return n.Current
}

// SetPage jumps to p. It returns false if p is not in the order.
func (n *Navigator) SetPage(p Page) bool {
	for _, o := range n.Order {
		if o == p {
			n.move(p)
			return true
		}
	}
	return false
}

func (n *Navigator) move(to Page) {
	from := n.Current
	n.Current = to
	if n.OnChange != nil && from != to {
		n.OnChange(from, to)
	}
}
