package document

import "github.com/kobzarvs/treesheets/internal/draw"

// TagTable maps tag names to display colors, keeping insertion order so
// saved files list tags the same way every time.
type TagTable struct {
	names  []string
	colors map[string]draw.Color
}

func NewTagTable() *TagTable {
	return &TagTable{colors: make(map[string]draw.Color)}
}

// Set adds name or recolors an existing tag in place.
func (t *TagTable) Set(name string, color draw.Color) {
	if name == "" {
		return
	}
	if _, ok := t.colors[name]; !ok {
		t.names = append(t.names, name)
	}
	t.colors[name] = color
}

func (t *TagTable) Color(name string) (draw.Color, bool) {
	c, ok := t.colors[name]
	return c, ok
}

func (t *TagTable) Has(name string) bool {
	_, ok := t.colors[name]
	return ok
}

func (t *TagTable) Delete(name string) {
	if _, ok := t.colors[name]; !ok {
		return
	}
	delete(t.colors, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
}

// Names returns the tags in insertion order.
func (t *TagTable) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *TagTable) Len() int { return len(t.names) }
