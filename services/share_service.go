package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/mholt/archiver/v3"
	"github.com/skip2/go-qrcode"
)

// QRSize 分享二维码边长
const QRSize = 256

// ShareService 拓扑图分享二维码和打包导出
type ShareService struct {
	topos     *TopoService
	images    *ImageService
	render    *RenderService
	publicURL string
}

func NewShareService(topos *TopoService, images *ImageService, render *RenderService, publicURL string) *ShareService {
	return &ShareService{
		topos:     topos,
		images:    images,
		render:    render,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// TopoURL 拓扑图的公开访问地址
func (s *ShareService) TopoURL(topoID uint) string {
	return fmt.Sprintf("%s/topos/%d", s.publicURL, topoID)
}

// QRCode 生成指向拓扑图的二维码 PNG
func (s *ShareService) QRCode(ctx context.Context, topoID uint, size int) ([]byte, error) {
	if _, err := s.topos.Get(ctx, topoID); err != nil {
		return nil, err
	}
	if size <= 0 || size > 1024 {
		size = QRSize
	}
	return qrcode.Encode(s.TopoURL(topoID), qrcode.Medium, size)
}

// ExportZip 打包原图、渲染图、线段 GeoJSON 和元数据
func (s *ShareService) ExportZip(ctx context.Context, topoID uint, w io.Writer) error {
	topo, err := s.topos.Get(ctx, topoID)
	if err != nil {
		return err
	}
	segments, err := editor.DecodeCollection(topo.LineSegments)
	if err != nil {
		return err
	}
	lines, err := editor.EncodeCollection(segments)
	if err != nil {
		return err
	}
	meta, err := json.MarshalIndent(topo, "", "  ")
	if err != nil {
		return err
	}
	rendered, err := s.render.RenderPNG(ctx, topoID, 0)
	if err != nil {
		return err
	}

	z := archiver.NewZip()
	if err := z.Create(w); err != nil {
		return fmt.Errorf("创建压缩包失败: %w", err)
	}
	if err := s.writeEntries(z, topo.FileName, []zipEntry{
		{"render.png", rendered},
		{"lines.geojson", lines},
		{"topo.json", meta},
	}); err != nil {
		z.Close()
		return err
	}
	return z.Close()
}

type zipEntry struct {
	name string
	data []byte
}

func (s *ShareService) writeEntries(z *archiver.Zip, fileName string, entries []zipEntry) error {
	original := s.images.Path(fileName)
	info, err := os.Stat(original)
	if err != nil {
		return fmt.Errorf("读取拓扑图片失败: %w", err)
	}
	f, err := os.Open(original)
	if err != nil {
		return err
	}
	err = z.Write(archiver.File{
		FileInfo:   archiver.FileInfo{FileInfo: info, CustomName: "image" + filepath.Ext(fileName)},
		ReadCloser: f,
	})
	f.Close()
	if err != nil {
		return err
	}

	for _, e := range entries {
		err := z.Write(archiver.File{
			FileInfo:   memFileInfo{name: e.name, size: int64(len(e.data)), modTime: time.Now()},
			ReadCloser: io.NopCloser(bytes.NewReader(e.data)),
		})
		if err != nil {
			return fmt.Errorf("写入 %s 失败: %w", e.name, err)
		}
	}
	return nil
}

// memFileInfo 内存文件的 os.FileInfo
type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (m memFileInfo) Name() string       { return m.name }
func (m memFileInfo) Size() int64        { return m.size }
func (m memFileInfo) Mode() os.FileMode  { return 0o644 }
func (m memFileInfo) ModTime() time.Time { return m.modTime }
func (m memFileInfo) IsDir() bool        { return false }
func (m memFileInfo) Sys() interface{}   { return nil }
