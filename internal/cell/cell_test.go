package cell

import (
	"errors"
	"testing"

	"github.com/kobzarvs/treesheets/internal/draw"
)

func texts(g *Grid) []string {
	out := make([]string, 0, len(g.Cells()))
	for _, c := range g.Cells() {
		out = append(out, c.Text.Value)
	}
	return out
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func fill(t *testing.T, cols, rows int, vals ...string) (*Cell, *Grid) {
	t.Helper()
	root := New()
	g := mustGrid(t, root, cols, rows)
	for i, v := range vals {
		g.Cells()[i].SetText(v)
	}
	return root, g
}

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.CellColor != draw.DefaultCellColor || c.TextColor != draw.DefaultTextColor {
		t.Fatalf("colors = %v/%v", c.CellColor, c.TextColor)
	}
	if c.Image != NoImage || c.HasImage() {
		t.Fatalf("Image = %d, want NoImage", c.Image)
	}
	if c.HasGrid() || c.HasText() {
		t.Fatalf("fresh cell should be an empty leaf")
	}
}

func TestNewGridRejectsEmpty(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 3}} {
		if _, err := NewGrid(dims[0], dims[1]); !errors.Is(err, ErrEmptyGrid) {
			t.Fatalf("NewGrid(%d,%d) err = %v, want ErrEmptyGrid", dims[0], dims[1], err)
		}
	}
}

func TestAddGridTwice(t *testing.T) {
	c := New()
	mustGrid(t, c, 1, 1)
	if _, err := c.AddGrid(2, 2); !errors.Is(err, ErrHasGrid) {
		t.Fatalf("second AddGrid err = %v, want ErrHasGrid", err)
	}
}

func TestParentLinks(t *testing.T) {
	root, g := fill(t, 2, 2)
	child := g.At(1, 1)
	if child.Parent() != root || child.ParentGrid() != g {
		t.Fatalf("child parent links broken")
	}
	if root.Parent() != nil {
		t.Fatalf("root has a parent")
	}
	x, y, ok := g.Find(child)
	if !ok || x != 1 || y != 1 {
		t.Fatalf("Find = %d,%d,%v, want 1,1,true", x, y, ok)
	}
}

func TestSetOutOfRange(t *testing.T) {
	_, g := fill(t, 2, 2)
	if err := g.Set(2, 0, New()); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Set err = %v, want ErrOutOfRange", err)
	}
	if g.At(-1, 0) != nil {
		t.Fatalf("At(-1,0) should be nil")
	}
}

func TestInsertColsKeepsPositions(t *testing.T) {
	_, g := fill(t, 2, 2, "a", "b", "c", "d")
	g.SetColWidth(1, 40)
	if err := g.InsertCols(1, 1); err != nil {
		t.Fatal(err)
	}
	if g.Cols != 3 {
		t.Fatalf("Cols = %d, want 3", g.Cols)
	}
	want := []string{"a", "", "b", "c", "", "d"}
	if got := texts(g); !equalStrings(got, want) {
		t.Fatalf("cells = %q, want %q", got, want)
	}
	if g.ColWidths[2] != 40 || g.ColWidths[1] != AutoWidth {
		t.Fatalf("ColWidths = %v", g.ColWidths)
	}
	for _, c := range g.Cells() {
		if c.ParentGrid() != g {
			t.Fatalf("inserted cell not adopted")
		}
	}
}

func TestInsertRowsAppend(t *testing.T) {
	_, g := fill(t, 2, 1, "a", "b")
	if err := g.InsertRows(1, 2); err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "", "", "", ""}
	if got := texts(g); !equalStrings(got, want) {
		t.Fatalf("cells = %q, want %q", got, want)
	}
	if len(g.RowHeights) != 3 {
		t.Fatalf("RowHeights = %v", g.RowHeights)
	}
}

func TestDeleteColsAndRows(t *testing.T) {
	_, g := fill(t, 3, 2, "a", "b", "c", "d", "e", "f")
	gone := g.At(1, 0)
	if err := g.DeleteCols(1, 1); err != nil {
		t.Fatal(err)
	}
	if got, want := texts(g), []string{"a", "c", "d", "f"}; !equalStrings(got, want) {
		t.Fatalf("after DeleteCols = %q, want %q", got, want)
	}
	if gone.ParentGrid() != nil {
		t.Fatalf("deleted cell still attached")
	}
	if err := g.DeleteRows(0, 1); err != nil {
		t.Fatal(err)
	}
	if got, want := texts(g), []string{"d", "f"}; !equalStrings(got, want) {
		t.Fatalf("after DeleteRows = %q, want %q", got, want)
	}
	if err := g.DeleteRows(0, 1); !errors.Is(err, ErrEmptyGrid) {
		t.Fatalf("deleting last row err = %v, want ErrEmptyGrid", err)
	}
	if err := g.DeleteCols(0, 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("overlong delete err = %v, want ErrOutOfRange", err)
	}
}

func TestTranspose(t *testing.T) {
	_, g := fill(t, 3, 2, "a", "b", "c", "d", "e", "f")
	g.SetColWidth(0, 50)
	g.Transpose()
	if g.Cols != 2 || g.Rows != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", g.Cols, g.Rows)
	}
	if got, want := texts(g), []string{"a", "d", "b", "e", "c", "f"}; !equalStrings(got, want) {
		t.Fatalf("cells = %q, want %q", got, want)
	}
	if len(g.ColWidths) != 2 || g.ColWidths[0] != AutoWidth {
		t.Fatalf("ColWidths = %v", g.ColWidths)
	}
	g.Transpose()
	if got, want := texts(g), []string{"a", "b", "c", "d", "e", "f"}; !equalStrings(got, want) {
		t.Fatalf("double transpose = %q, want %q", got, want)
	}
}

func TestSortRows(t *testing.T) {
	_, g := fill(t, 2, 5,
		"pear", "1",
		"10", "2",
		"Apple", "3",
		"9", "4",
		"apple", "5")
	if err := g.SortRows(0, false); err != nil {
		t.Fatal(err)
	}
	var col0, col1 []string
	for y := 0; y < g.Rows; y++ {
		col0 = append(col0, g.At(0, y).Text.Value)
		col1 = append(col1, g.At(1, y).Text.Value)
	}
	if want := []string{"9", "10", "Apple", "apple", "pear"}; !equalStrings(col0, want) {
		t.Fatalf("sorted = %q, want %q", col0, want)
	}
	if want := []string{"4", "2", "3", "5", "1"}; !equalStrings(col1, want) {
		t.Fatalf("rows did not move together: %q, want %q", col1, want)
	}
	if err := g.SortRows(2, false); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("sort err = %v, want ErrOutOfRange", err)
	}
}

func TestSortRowsDescending(t *testing.T) {
	_, g := fill(t, 1, 3, "1", "3", "2")
	g.SortRows(0, true)
	if got, want := texts(g), []string{"3", "2", "1"}; !equalStrings(got, want) {
		t.Fatalf("sorted = %q, want %q", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root, g := fill(t, 1, 2, "x", "y")
	inner := mustGrid(t, g.At(0, 1), 1, 1)
	inner.At(0, 0).SetText("deep")

	cp := root.Clone()
	if cp.Grid == g {
		t.Fatalf("clone shares grid")
	}
	cp.Grid.At(0, 1).Grid.At(0, 0).SetText("changed")
	if inner.At(0, 0).Text.Value != "deep" {
		t.Fatalf("clone mutation leaked into original")
	}
	if cp.Grid.Owner() != cp || cp.Grid.At(0, 0).Parent() != cp {
		t.Fatalf("clone parent links not rebuilt")
	}
}

func TestCount(t *testing.T) {
	root, g := fill(t, 2, 1, "ab", "cde")
	mustGrid(t, g.At(0, 0), 1, 1)
	cells, bytes := root.Count()
	if cells != 4 || bytes != 5 {
		t.Fatalf("Count = %d cells, %d bytes, want 4, 5", cells, bytes)
	}
}

func TestWalkDepthAndSkip(t *testing.T) {
	root, g := fill(t, 2, 1, "a", "b")
	mustGrid(t, g.At(0, 0), 1, 1).At(0, 0).SetText("deep")
	var seen []string
	root.Walk(func(c *Cell, depth int) bool {
		seen = append(seen, c.Text.Value)
		if c.Text.Value == "deep" && depth != 2 {
			t.Fatalf("deep at depth %d", depth)
		}
		return true
	})
	if want := []string{"", "a", "deep", "b"}; !equalStrings(seen, want) {
		t.Fatalf("walk = %q, want %q", seen, want)
	}
	n := 0
	root.Walk(func(*Cell, int) bool { n++; return false })
	if n != 1 {
		t.Fatalf("skip visited %d cells", n)
	}
}

func TestFlatten(t *testing.T) {
	root, g := fill(t, 2, 1, "label", "b")
	sub := mustGrid(t, g.At(0, 0), 2, 1)
	sub.At(0, 0).SetText("x")
	sub.At(1, 0).SetText("y")
	root.Flatten()
	if root.Grid.Cols != 1 {
		t.Fatalf("Cols = %d, want 1", root.Grid.Cols)
	}
	if got, want := texts(root.Grid), []string{"label", "x", "y", "b"}; !equalStrings(got, want) {
		t.Fatalf("flattened = %q, want %q", got, want)
	}
	for _, c := range root.Grid.Cells() {
		if c.HasGrid() {
			t.Fatalf("flattened cell %q still has a grid", c.Text.Value)
		}
		if c.Parent() != root {
			t.Fatalf("flattened cell %q not adopted", c.Text.Value)
		}
	}
}

func TestFoldAll(t *testing.T) {
	root, g := fill(t, 1, 1)
	mustGrid(t, g.At(0, 0), 1, 1)
	root.FoldAll(true)
	if !root.Folded() || !g.At(0, 0).Folded() {
		t.Fatalf("FoldAll(true) left a grid open")
	}
	root.UnfoldAll()
	if root.Folded() || g.At(0, 0).Folded() {
		t.Fatalf("UnfoldAll left a grid folded")
	}
	leaf := New()
	leaf.SetFolded(true)
	if leaf.Folded() {
		t.Fatalf("leaf reports folded")
	}
}

func TestSetBorderClamps(t *testing.T) {
	c := New()
	c.SetBorder(9, 0x123456)
	if c.BorderWidth != MaxBorderWidth || c.BorderColor != 0x123456 {
		t.Fatalf("border = %d %v", c.BorderWidth, c.BorderColor)
	}
	c.SetBorder(-2, 0)
	if c.BorderWidth != 0 {
		t.Fatalf("border = %d, want 0", c.BorderWidth)
	}
}

func TestAssemble(t *testing.T) {
	cells := []*Cell{NewText("a"), NewText("b")}
	g, err := Assemble(2, 1, cells)
	if err != nil {
		t.Fatal(err)
	}
	if g.At(1, 0) != cells[1] || cells[1].ParentGrid() != g {
		t.Fatalf("Assemble did not adopt cells")
	}
	if _, err := Assemble(2, 2, cells); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("short Assemble err = %v, want ErrOutOfRange", err)
	}
}
