package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailWidth 缩略图宽度
const ThumbnailWidth = 320

var (
	ErrUnsupportedImage = errors.New("仅支持 JPEG、PNG、WebP 图片")
	ErrImageTooLarge    = errors.New("图片超过大小限制")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// StoredImage 落盘后的图片信息
type StoredImage struct {
	FileName  string
	Thumbnail string
	MimeType  string
	Width     int
	Height    int
}

// ImageService 拓扑图片存储
type ImageService struct {
	dir      string
	maxBytes int64
}

func NewImageService(dir string, maxBytes int64) *ImageService {
	return &ImageService{dir: dir, maxBytes: maxBytes}
}

// Dir 图片目录
func (s *ImageService) Dir() string {
	return s.dir
}

// Path 文件的完整路径
func (s *ImageService) Path(fileName string) string {
	return filepath.Join(s.dir, filepath.Base(fileName))
}

// SaveUpload 保存表单上传的图片
func (s *ImageService) SaveUpload(fh *multipart.FileHeader) (*StoredImage, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("无法打开上传文件")
	}
	defer f.Close()
	return s.Save(f)
}

// Save 校验内容类型、解码尺寸，按 uuid 命名保存原图并生成缩略图
func (s *ImageService) Save(r io.Reader) (*StoredImage, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("无法读取文件内容")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法解析图片: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	stored := &StoredImage{
		FileName:  id + mt.Extension(),
		Thumbnail: id + "_thumb.jpg",
		MimeType:  mt.String(),
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
	}
	if err := os.WriteFile(s.Path(stored.FileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("保存图片失败: %w", err)
	}
	if err := s.writeThumbnail(img, s.Path(stored.Thumbnail)); err != nil {
		os.Remove(s.Path(stored.FileName))
		return nil, fmt.Errorf("生成缩略图失败: %w", err)
	}
	return stored, nil
}

// Remove 删除原图和缩略图，记录写库失败时回收文件
func (s *ImageService) Remove(stored *StoredImage) error {
	var errs []error
	for _, name := range []string{stored.FileName, stored.Thumbnail} {
		if name == "" {
			continue
		}
		if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load 读取并解码已保存的图片
func (s *ImageService) Load(fileName string) (image.Image, error) {
	f, err := os.Open(s.Path(fileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func (s *ImageService) writeThumbnail(img image.Image, path string) error {
	thumb := ScaleToWidth(img, ThumbnailWidth)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ScaleToWidth 等比缩放到指定宽度，不放大
func ScaleToWidth(src image.Image, width int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 || width >= b.Dx() {
		width = b.Dx()
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
