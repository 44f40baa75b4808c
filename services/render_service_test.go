package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/paulmach/orb"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestRenderLinesDrawsSegments(t *testing.T) {
	seg := editor.NewLineSegment(7, orb.LineString{{0.1, 0.25}, {0.9, 0.25}})
	ghost := editor.NewLineSegment(8, orb.LineString{{0.5, 0.9}})

	out, err := RenderLines(whiteImage(400, 200), []editor.LineSegment{seg, ghost})
	if err != nil {
		t.Fatal(err)
	}
	if b := out.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("bounds = %v", b)
	}
	r, g, _, _ := out.At(200, 50).RGBA()
	if r>>8 < 150 || g>>8 > 100 {
		t.Errorf("pixel on line = %v, want red", out.At(200, 50))
	}
	if out.At(200, 150) != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("pixel off line = %v, want white", out.At(200, 150))
	}
}

// 删除标记只存在于请求中，渲染结果只取决于几何和线号
func TestRenderLinesIgnoresDeletingFlag(t *testing.T) {
	seg := editor.NewLineSegment(3, orb.LineString{{0.1, 0.5}, {0.5, 0.2}, {0.9, 0.5}})
	marked := seg
	marked.Properties.Deleting = true

	plain, err := RenderLines(whiteImage(300, 150), []editor.LineSegment{seg})
	if err != nil {
		t.Fatal(err)
	}
	flagged, err := RenderLines(whiteImage(300, 150), []editor.LineSegment{marked})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain.Pix, flagged.Pix) {
		t.Error("deleting flag changed the rendered image")
	}
}

func TestRenderServiceCaches(t *testing.T) {
	db := newTestDB(t)
	cache := NewRenderCache(8, time.Minute)
	defer cache.Close()
	topos := NewTopoService(db, nil, cache)
	images := NewImageService(t.TempDir(), 0)
	render := NewRenderService(topos, images, cache)

	var buf bytes.Buffer
	if err := png.Encode(&buf, whiteImage(320, 160)); err != nil {
		t.Fatal(err)
	}
	stored, err := images.Save(&buf)
	if err != nil {
		t.Fatal(err)
	}
	topo := seedTopo(t, topos, seedCrag(t, db).ID, stored.FileName)
	if _, err := topos.SubmitLine(t.Context(), topo.ID, "alice", lineRequest(1, true, orb.LineString{{0.2, 0.8}, {0.5, 0.4}, {0.7, 0.1}})); err != nil {
		t.Fatal(err)
	}

	data, err := render.RenderPNG(t.Context(), topo.ID, 160)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 80 {
		t.Errorf("rendered bounds = %v", b)
	}
	if cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Size())
	}

	// 修改线条后缓存失效
	if _, err := topos.SubmitLine(t.Context(), topo.ID, "alice", editor.SubmitRequest{LineLabel: 1, Deleting: true}); err != nil {
		t.Fatal(err)
	}
	if cache.Size() != 0 {
		t.Errorf("cache size after edit = %d, want 0", cache.Size())
	}

	os.Remove(images.Path(stored.FileName))
	if _, err := render.RenderPNG(t.Context(), topo.ID, 160); err == nil {
		t.Error("render without image should fail")
	}
}
