package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/paulmach/orb"
)

func TestHTTPGatewaySubmit(t *testing.T) {
	var got editor.SubmitRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/topos/7/lines" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(editor.SubmitResult{OK: true, Message: "线条已保存"})
	}))
	defer srv.Close()

	seg := editor.NewLineSegment(1, orb.LineString{{0.125, 0.1}, {0.2, 0.5}})
	gw := NewHTTPGateway(srv.URL+"/", "secret")
	res, err := gw.SubmitLine(context.Background(), editor.SubmitRequest{TopoID: 7, FileName: "a.jpg", LineLabel: 1, Feature: &seg})
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.Message != "线条已保存" {
		t.Errorf("res = %+v", res)
	}
	if auth != "Bearer secret" {
		t.Errorf("auth = %q", auth)
	}
	if got.LineLabel != 1 || got.AsNew || got.Feature == nil || got.Feature.Geometry.Coordinates[0] != (orb.Point{0.125, 0.1}) {
		t.Errorf("server saw %+v", got)
	}
}

func TestHTTPGatewayErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		detail string
	}{
		{"conflict", http.StatusConflict, `{"error":"线号冲突"}`, func(err error) bool { return errors.Is(err, editor.ErrLabelConflict) }, "线号 5 已被占用，请换一个线号"},
		{"details surfaced", http.StatusBadRequest, `{"error":"请求无效","details":"坐标超出范围"}`, nil, "坐标超出范围"},
		{"error only", http.StatusUnauthorized, `{"error":"未登录"}`, nil, "未登录"},
		{"no body", http.StatusBadGateway, ``, nil, "保存失败，请重试"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			gw := NewHTTPGateway(srv.URL, "")
			_, err := gw.SubmitLine(context.Background(), editor.SubmitRequest{TopoID: 1, LineLabel: 5, AsNew: true})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("err = %v", err)
			}
			if msg := editor.UserMessage(err); msg != tt.detail {
				t.Errorf("message = %q, want %q", msg, tt.detail)
			}
		})
	}
}

func TestHTTPGatewayFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := editor.EncodeCollection([]editor.LineSegment{
			editor.NewLineSegment(2, orb.LineString{{0, 0}, {1, 1}}),
		})
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
	}))
	defer srv.Close()
	segs, err := NewHTTPGateway(srv.URL, "").FetchSegments(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 || segs[0].Label() != 2 {
		t.Errorf("segments = %+v", segs)
	}
}

func TestHTTPGatewayTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	_, err := NewHTTPGateway(srv.URL, "").FetchSegments(context.Background(), 1)
	var gwErr *editor.GatewayError
	if !errors.As(err, &gwErr) {
		t.Errorf("err = %v", err)
	}
}
