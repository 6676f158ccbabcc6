package area

import (
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/isdframe/geom"
)

func TestLineRejectsNonInlineChild(t *testing.T) {
	tr := New()
	line := tr.NewArea(Line, nil, geom.LRTB, geom.Rect{W: 100, H: 20})
	block := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 10, H: 10})

	err := tr.AddChild(line, block)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("adding a block to a line should fail with ErrInvalidArgument, got %v", err)
	}
	if len(tr.Children(line)) != 0 {
		t.Fatalf("rejected child must not be attached")
	}
	if tr.Parent(block) != None {
		t.Fatalf("rejected child must keep no parent, got %d", tr.Parent(block))
	}

	glyph := tr.NewGlyph(nil, geom.LRTB, "ok", geom.Rect{W: 10, H: 20})
	if err := tr.AddChild(line, glyph); err != nil {
		t.Fatalf("glyph should be accepted by a line: %v", err)
	}
}

func TestLeafCannotHaveChildren(t *testing.T) {
	tr := New()
	glyph := tr.NewGlyph(nil, geom.LRTB, "a", geom.Rect{})
	filler := tr.NewArea(InlineFiller, nil, geom.LRTB, geom.Rect{})
	if err := tr.AddChild(glyph, filler); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("leaf parent should be rejected, got %v", err)
	}
}

func TestExpansion(t *testing.T) {
	cases := []struct {
		name string
		exp  Expansion
		want float64
	}{
		{"enclose", EncloseIPD, 50},
		{"expand", ExpandIPD, 80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New()
			parent := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
			a := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 30, H: 5})
			b := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 50, H: 5})
			if err := tr.AddChild(parent, a, tc.exp); err != nil {
				t.Fatal(err)
			}
			if err := tr.AddChild(parent, b, tc.exp); err != nil {
				t.Fatal(err)
			}
			if got := tr.Node(parent).IPD(); got != tc.want {
				t.Fatalf("IPD = %v, want %v", got, tc.want)
			}
			if got := tr.Node(parent).BPD(); got != 0 {
				t.Fatalf("BPD should be untouched, got %v", got)
			}
		})
	}
}

func TestExpansionWithoutFlagsKeepsSize(t *testing.T) {
	tr := New()
	parent := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 10, H: 10})
	child := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 40, H: 40})
	if err := tr.AddChild(parent, child); err != nil {
		t.Fatal(err)
	}
	if r := tr.Node(parent).Rect; r.W != 10 || r.H != 10 {
		t.Fatalf("parent should not grow without expansion, got %+v", r)
	}
}

func TestExpansionVerticalWritingMode(t *testing.T) {
	tr := New()
	parent := tr.NewArea(Block, nil, geom.TBRL, geom.Rect{})
	child := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 30, H: 70})
	if err := tr.AddChild(parent, child, ExpandBPD, EncloseIPD); err != nil {
		t.Fatal(err)
	}
	r := tr.Node(parent).Rect
	if r.W != 30 || r.H != 70 {
		t.Fatalf("vertical parent should project child extent onto its own axes, got %+v", r)
	}
	if ipd := tr.Node(parent).IPD(); ipd != 70 {
		t.Fatalf("vertical IPD should be the height, got %v", ipd)
	}
}

func TestInsertChild(t *testing.T) {
	tr := New()
	parent := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	a := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	b := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	c := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	stranger := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})

	if err := tr.AddChild(parent, a); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddChild(parent, c); err != nil {
		t.Fatal(err)
	}
	if err := tr.InsertChild(parent, b, c); err != nil {
		t.Fatal(err)
	}
	got := tr.Children(parent)
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("unexpected child order %v", got)
	}
	if tr.FirstChild(parent) != a || tr.LastChild(parent) != c {
		t.Fatalf("FirstChild/LastChild mismatch")
	}

	d := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	if err := tr.InsertChild(parent, d, stranger); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("insert before an unknown sibling should fail, got %v", err)
	}
	if tr.Parent(d) != None || len(tr.Children(parent)) != 3 {
		t.Fatalf("failed insert must not attach the child")
	}
}

func TestReparentKeepsBothSidesConsistent(t *testing.T) {
	tr := New()
	p1 := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	p2 := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	child := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{})
	if err := tr.AddChild(p1, child); err != nil {
		t.Fatal(err)
	}
	if err := tr.AddChild(p2, child); err != nil {
		t.Fatal(err)
	}
	if tr.Parent(child) != p2 {
		t.Fatalf("parent should be updated")
	}
	if len(tr.Children(p1)) != 0 {
		t.Fatalf("old parent still lists the child")
	}
	if tr.FirstChild(p2) != child {
		t.Fatalf("new parent does not list the child")
	}
	if err := tr.AddChild(child, p2); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("attaching an ancestor below its descendant should fail, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	tr := New()
	b := tr.NewArea(Block, nil, geom.LRTB, geom.Rect{W: 200, H: 100})
	if v, err := tr.Available(b, geom.Horizontal); err != nil || v != 200 {
		t.Fatalf("Available(horizontal) = %v, %v", v, err)
	}
	tr.SetAvailable(b, geom.Extent{W: 640, H: 480})
	if v, err := tr.Available(b, geom.Vertical); err != nil || v != 480 {
		t.Fatalf("explicit available extent should win, got %v, %v", v, err)
	}
	if _, err := tr.Available(b, geom.AxisNone); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("axis-less query should fail, got %v", err)
	}
}

func TestRootReference(t *testing.T) {
	tr := New()
	canvas := tr.NewCanvas(nil, geom.Extent{W: 300, H: 200})
	root := tr.NewReference(nil, geom.LRTB, geom.Rect{W: 300, H: 200})
	vp := tr.NewArea(Viewport, nil, geom.LRTB, geom.Rect{X: 10, Y: 20, W: 100, H: 50})
	nested := tr.NewReference(nil, geom.LRTB, geom.Rect{X: 10, Y: 20, W: 100, H: 50})
	for _, step := range [][2]ID{{canvas, root}, {root, vp}, {vp, nested}} {
		if err := tr.AddChild(step[0], step[1]); err != nil {
			t.Fatal(err)
		}
	}
	if !tr.IsRootReference(root) {
		t.Fatalf("reference under the canvas should be the root reference")
	}
	if tr.IsRootReference(nested) {
		t.Fatalf("nested reference is not a root reference")
	}
	if x, y := geom.Offset(tr.Node(nested).Transform); x != 10 || y != 20 {
		t.Fatalf("reference transform should translate to its origin, got %v,%v", x, y)
	}

	var visited []Kind
	tr.Walk(canvas, func(id ID, depth int) bool {
		visited = append(visited, tr.Node(id).Kind)
		return true
	})
	want := []Kind{Canvas, Reference, Viewport, Reference}
	if len(visited) != len(want) {
		t.Fatalf("walk visited %v", visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("walk order %v, want %v", visited, want)
		}
	}
}

func TestSnapshotAndDOT(t *testing.T) {
	tr := New()
	line := tr.NewArea(Line, nil, geom.LRTB, geom.Rect{W: 100, H: 20})
	g := tr.NewGlyph(nil, geom.LRTB, "hello", geom.Rect{W: 40, H: 20})
	if err := tr.AddChild(line, g); err != nil {
		t.Fatal(err)
	}
	snap := tr.Snapshot(line)
	if snap.Kind != "line" || len(snap.Children) != 1 || snap.Children[0].Text != "hello" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	dot := tr.DOT(line)
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, "hello") {
		t.Fatalf("unexpected DOT output:\n%s", dot)
	}
}

func TestNewAreaRejectsInvalidKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("allocating an invalid kind should panic")
		}
	}()
	New().NewArea(KindInvalid, nil, geom.LRTB, geom.Rect{})
}
