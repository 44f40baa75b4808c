package editor

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestCollectionEncodeDecode(t *testing.T) {
	in := []LineSegment{
		NewLineSegment(1, orb.LineString{{0.1, 0.1}, {0.2, 0.5}}),
		{Type: FeatureType, Geometry: Geometry{Type: GeomPoint, Coordinates: orb.LineString{{0.3, 0.3}}}, Properties: Properties{LineLabel: 2}},
	}
	in[0].Properties.TopoID = 12
	in[0].Properties.FileName = "wall.jpg"
	in[0].Properties.Deleting = true

	data, err := EncodeCollection(in)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "deleting") {
		t.Errorf("deleting flag must not be persisted: %s", data)
	}

	out, err := DecodeCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Label() != 1 || out[0].Properties.TopoID != 12 || out[0].Properties.FileName != "wall.jpg" {
		t.Errorf("first segment = %+v", out[0])
	}
	if out[0].Geometry.Coordinates[1] != (orb.Point{0.2, 0.5}) {
		t.Errorf("coords = %v", out[0].Geometry.Coordinates)
	}
	if out[1].Geometry.Type != GeomPoint || out[1].Drawable() {
		t.Errorf("point segment = %+v", out[1])
	}
}

func TestDecodeCollectionEmpty(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		got, err := DecodeCollection([]byte(raw))
		if err != nil || len(got) != 0 {
			t.Errorf("DecodeCollection(%q) = %v, %v", raw, got, err)
		}
	}
}

func TestDecodeCollectionMissingLabel(t *testing.T) {
	raw := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}]}`
	if _, err := DecodeCollection([]byte(raw)); err == nil {
		t.Error("expected error for missing line_label")
	}
}
