package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/linework"
	"github.com/GrainArc/CragTopo/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTopoNotFound    = errors.New("拓扑图不存在")
	ErrInvalidFeature  = errors.New("线段几何无效")
	ErrInvalidPosition = errors.New("经纬度超出范围")
)

type TopoService struct {
	db    *gorm.DB
	hub   EventHub
	cache *RenderCache
}

// NewTopoService hub 和 cache 可以为空
func NewTopoService(db *gorm.DB, hub EventHub, cache *RenderCache) *TopoService {
	return &TopoService{db: db, hub: hub, cache: cache}
}

// Get 根据ID获取拓扑图
func (s *TopoService) Get(ctx context.Context, id uint) (*models.Topo, error) {
	var topo models.Topo
	if err := s.db.WithContext(ctx).First(&topo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopoNotFound
		}
		return nil, err
	}
	return &topo, nil
}

// Segments 返回权威线段集合
func (s *TopoService) Segments(ctx context.Context, id uint) ([]editor.LineSegment, error) {
	topo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return editor.DecodeCollection(topo.LineSegments)
}

// ValidPosition 经纬度范围检查
func ValidPosition(lon, lat float64) error {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return ErrInvalidPosition
	}
	return nil
}

// Create 新建拓扑图记录
func (s *TopoService) Create(ctx context.Context, topo *models.Topo) error {
	if err := ValidPosition(topo.Longitude, topo.Latitude); err != nil {
		return err
	}
	if len(topo.LineSegments) == 0 {
		empty, err := editor.EncodeCollection(nil)
		if err != nil {
			return err
		}
		topo.LineSegments = datatypes.JSON(empty)
	}
	return s.db.WithContext(ctx).Create(topo).Error
}

// ListByCrag 岩场下的全部拓扑图
func (s *TopoService) ListByCrag(ctx context.Context, cragID uint) ([]models.Topo, error) {
	var topos []models.Topo
	err := s.db.WithContext(ctx).
		Where("crag_id = ?", cragID).
		Order("id ASC").
		Find(&topos).Error
	return topos, err
}

// UpdatePosition 调整拓扑图在地图上的标注位置
func (s *TopoService) UpdatePosition(ctx context.Context, id uint, lon, lat float64) (*models.Topo, error) {
	if err := ValidPosition(lon, lat); err != nil {
		return nil, err
	}
	topo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(topo).Updates(map[string]interface{}{
		"longitude": lon,
		"latitude":  lat,
	}).Error
	if err != nil {
		return nil, err
	}
	topo.Longitude, topo.Latitude = lon, lat
	s.publish(ctx, TopoEvent{TopoID: id, Action: "position", At: time.Now().Unix()})
	return topo, nil
}

// MarkersGeoJSON 岩场拓扑图的地图标注点，未定位的跳过
func (s *TopoService) MarkersGeoJSON(ctx context.Context, cragID uint) (*geojson.FeatureCollection, error) {
	topos, err := s.ListByCrag(ctx, cragID)
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for _, t := range topos {
		if t.Longitude == 0 && t.Latitude == 0 {
			continue
		}
		f := geojson.NewFeature(orb.Point{t.Longitude, t.Latitude})
		f.ID = t.ID
		f.Properties["id"] = t.ID
		f.Properties["file_name"] = t.FileName
		f.Properties["thumbnail"] = t.Thumbnail
		f.Properties["exposition"] = t.Exposition
		f.Properties["description"] = t.Description
		segments, err := editor.DecodeCollection(t.LineSegments)
		if err != nil {
			log.Printf("拓扑图 %d 线段解析失败: %v", t.ID, err)
		}
		f.Properties["line_count"] = len(segments)
		fc.Append(f)
	}
	return fc, nil
}

// SubmitLine 在事务内应用一次新建/替换/删除：重新检查线号唯一，
// 写入线段集合和修改记录，然后让渲染缓存失效并发布变更
func (s *TopoService) SubmitLine(ctx context.Context, topoID uint, username string, req editor.SubmitRequest) (editor.SubmitResult, error) {
	req.TopoID = topoID
	intent := req.Intent()
	if intent != editor.IntentDelete {
		if err := validateFeature(req); err != nil {
			return editor.SubmitResult{}, err
		}
	}

	changed := true
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() != "sqlite" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var topo models.Topo
		if err := query.First(&topo, topoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopoNotFound
			}
			return err
		}
		if req.FileName == "" {
			req.FileName = topo.FileName
		}

		segments, err := editor.DecodeCollection(topo.LineSegments)
		if err != nil {
			return err
		}
		store := editor.NewStore(segments)
		before, existed := store.FindByLabel(req.LineLabel)
		if intent == editor.IntentDelete && !existed {
			changed = false
			return nil
		}

		next, err := editor.ApplyRequest(store, req)
		if err != nil {
			return err
		}
		data, err := editor.EncodeCollection(next.Segments())
		if err != nil {
			return err
		}
		if err := tx.Model(&topo).Update("line_segments", datatypes.JSON(data)).Error; err != nil {
			return fmt.Errorf("保存线段失败: %w", err)
		}

		record := models.LineRecord{
			TopoID:    topoID,
			LineLabel: req.LineLabel,
			Type:      intent.String(),
			Username:  username,
			Date:      time.Now().Format("2006-01-02 15:04:05"),
		}
		if existed {
			record.OldGeojson = featureJSON(before)
		}
		if after, ok := next.FindByLabel(req.LineLabel); ok && intent != editor.IntentDelete {
			record.NewGeojson = featureJSON(after)
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return editor.SubmitResult{}, err
	}

	if !changed {
		return editor.SubmitResult{OK: true, Message: "线条不存在，无需删除"}, nil
	}
	if s.cache != nil {
		s.cache.InvalidatePrefix(topoCachePrefix(topoID))
	}
	s.publish(ctx, TopoEvent{
		TopoID:    topoID,
		Action:    intent.String(),
		LineLabel: req.LineLabel,
		Username:  username,
		At:        time.Now().Unix(),
	})
	log.Printf("拓扑图 %d 线号 %d %s by %s", topoID, req.LineLabel, intent, username)
	return editor.SubmitResult{OK: true, Message: resultMessage(intent)}, nil
}

// History 线条修改记录，最新的在前
func (s *TopoService) History(ctx context.Context, topoID uint, limit int) ([]models.LineRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []models.LineRecord
	err := s.db.WithContext(ctx).
		Where("topo_id = ?", topoID).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *TopoService) publish(ctx context.Context, ev TopoEvent) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Publish(ctx, ev); err != nil {
		log.Printf("发布拓扑图 %d 变更失败: %v", ev.TopoID, err)
	}
}

func validateFeature(req editor.SubmitRequest) error {
	seg := req.Feature
	if seg == nil {
		return fmt.Errorf("%w: 缺少 feature", ErrInvalidFeature)
	}
	if seg.Geometry.Type != editor.GeomLineString {
		return fmt.Errorf("%w: 几何类型必须为 LineString", ErrInvalidFeature)
	}
	if len(seg.Geometry.Coordinates) < 2 {
		return editor.ErrTooFewPoints
	}
	if !linework.InUnitSquare(seg.Geometry.Coordinates) {
		return fmt.Errorf("%w: 坐标必须在 [0,1] 范围内", ErrInvalidFeature)
	}
	if req.LineLabel < 0 {
		return fmt.Errorf("%w: 线号不能为负数", ErrInvalidFeature)
	}
	if req.LineLabel == editor.FreshLineLabel {
		return editor.ErrReservedLabel
	}
	return nil
}

func featureJSON(seg editor.LineSegment) datatypes.JSON {
	data, err := json.Marshal(seg.ToFeature())
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func resultMessage(intent editor.Intent) string {
	switch intent {
	case editor.IntentCreate:
		return "新建线条成功"
	case editor.IntentDelete:
		return "线条已删除"
	default:
		return "线条已更新"
	}
}

func topoCachePrefix(topoID uint) string {
	return fmt.Sprintf("topo:%d:", topoID)
}
