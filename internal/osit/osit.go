// Package osit builds the breadcrumb trail shown above every page.
package osit

type Item struct {
	Label  string
	URL    string
	Active bool
}

type Trail struct {
	items []Item
}

func New(label, url string) *Trail {
	return (&Trail{}).Add(label, url)
}

func (t *Trail) Add(label, url string) *Trail {
	t.items = append(t.items, Item{Label: label, URL: url})
	return t
}

// Items returns a copy of the trail with the last entry marked active.
func (t *Trail) Items() []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, len(t.items))
	copy(out, t.items)
	if n := len(out); n > 0 {
		out[n-1].Active = true
	}
	return out
}

// Title is the label of the active entry.
func (t *Trail) Title() string {
	if t == nil || len(t.items) == 0 {
		return ""
	}
	return t.items[len(t.items)-1].Label
}
