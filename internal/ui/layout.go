package ui

// sidebarWidth is the outer width of the page list, border included.
const sidebarWidth = 22

// Layout is the split of the terminal between the sidebar, the page and the
// status line.
type Layout struct {
	SidebarWidth  int
	ContentWidth  int
	ContentHeight int
}

// ComputeLayout splits a width x height terminal. Sizes never go negative;
// a zero-sized terminal yields an unbounded content area.
func ComputeLayout(width, height int) Layout {
	l := Layout{SidebarWidth: sidebarWidth}
	if width > 0 {
		l.ContentWidth = max(width-sidebarWidth-1, 20)
	}
	if height > 0 {
		// status line and help bar
		l.ContentHeight = max(height-2, 5)
	}
	return l
}
