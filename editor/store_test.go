package editor

import (
	"testing"

	"github.com/paulmach/orb"
)

func seg(label int, pts ...orb.Point) LineSegment {
	return NewLineSegment(label, orb.LineString(pts))
}

func TestStoreFindByLabel(t *testing.T) {
	s := NewStore([]LineSegment{seg(1, orb.Point{0.1, 0.1}, orb.Point{0.2, 0.5}), seg(4)})
	got, ok := s.FindByLabel(1)
	if !ok || got.Label() != 1 || len(got.Geometry.Coordinates) != 2 {
		t.Fatalf("FindByLabel(1) = %+v, %v", got, ok)
	}
	if _, ok := s.FindByLabel(2); ok {
		t.Error("FindByLabel(2) should miss")
	}
	// 返回值是拷贝
	got.Geometry.Coordinates[0] = orb.Point{9, 9}
	again, _ := s.FindByLabel(1)
	if again.Geometry.Coordinates[0] != (orb.Point{0.1, 0.1}) {
		t.Error("FindByLabel leaked internal slice")
	}
}

func TestStoreWithReplaced(t *testing.T) {
	base := NewStore([]LineSegment{seg(1, orb.Point{0, 0}, orb.Point{1, 1}), seg(2, orb.Point{0, 0}, orb.Point{1, 1})})
	next := base.WithReplaced(2, seg(2, orb.Point{0.5, 0.5}, orb.Point{0.6, 0.6}))
	if got, _ := next.FindByLabel(2); got.Geometry.Coordinates[0] != (orb.Point{0.5, 0.5}) {
		t.Errorf("replaced coords = %v", got.Geometry.Coordinates)
	}
	if got, _ := base.FindByLabel(2); got.Geometry.Coordinates[0] != (orb.Point{0, 0}) {
		t.Error("WithReplaced mutated the original store")
	}
	if labels := next.Labels(); len(labels) != 2 || labels[1] != 2 {
		t.Errorf("labels = %v, want order preserved", labels)
	}
}

func TestStoreWithReplacedUpsert(t *testing.T) {
	base := NewStore([]LineSegment{seg(1, orb.Point{0, 0}, orb.Point{1, 1})})
	next := base.WithReplaced(7, seg(7, orb.Point{0.2, 0.2}, orb.Point{0.3, 0.3}))
	if next.Len() != 2 {
		t.Fatalf("Len = %d, want 2", next.Len())
	}
	if labels := next.Labels(); labels[1] != 7 {
		t.Errorf("labels = %v, want 7 appended", labels)
	}
	if base.Len() != 1 {
		t.Error("original store changed")
	}
}

func TestStoreWithRemoved(t *testing.T) {
	base := NewStore([]LineSegment{seg(1), seg(2), seg(3)})
	next := base.WithRemoved(2)
	if got := next.Labels(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("labels = %v", got)
	}
	if base.Len() != 3 {
		t.Error("original store changed")
	}

	same := base.WithRemoved(42)
	if same.Len() != base.Len() {
		t.Errorf("removing a missing label changed the store: %v", same.Labels())
	}
}

func TestStoreWithAppended(t *testing.T) {
	next := NewStore(nil).WithAppended(seg(5)).WithAppended(seg(6))
	if got := next.Labels(); len(got) != 2 || got[0] != 5 || got[1] != 6 {
		t.Errorf("labels = %v", got)
	}
}

func TestStoreDuplicateLabels(t *testing.T) {
	s := NewStore([]LineSegment{seg(1), seg(2), seg(1), seg(1)})
	if d := s.DuplicateLabels(); len(d) != 1 || d[0] != 1 {
		t.Errorf("DuplicateLabels = %v", d)
	}
}
