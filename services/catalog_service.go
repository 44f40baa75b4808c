package services

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/GrainArc/CragTopo/models"
	"gorm.io/gorm"
)

var (
	ErrAreaNotFound = errors.New("区域不存在")
	ErrCragNotFound = errors.New("岩场不存在")
)

// CatalogService 区域、岩场、线路
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListAreas(ctx context.Context) ([]models.Area, error) {
	var areas []models.Area
	err := s.db.WithContext(ctx).Order("name ASC").Find(&areas).Error
	return areas, err
}

func (s *CatalogService) CreateArea(ctx context.Context, area *models.Area) error {
	return s.db.WithContext(ctx).Create(area).Error
}

func (s *CatalogService) GetArea(ctx context.Context, id uint) (*models.Area, error) {
	var area models.Area
	if err := s.db.WithContext(ctx).First(&area, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}
	return &area, nil
}

// ListCrags 区域下的岩场
func (s *CatalogService) ListCrags(ctx context.Context, areaID uint) ([]models.Crag, error) {
	if _, err := s.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	var crags []models.Crag
	err := s.db.WithContext(ctx).Where("area_id = ?", areaID).Order("name ASC").Find(&crags).Error
	return crags, err
}

func (s *CatalogService) CreateCrag(ctx context.Context, crag *models.Crag) error {
	if _, err := s.GetArea(ctx, crag.AreaID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(crag).Error
}

func (s *CatalogService) GetCrag(ctx context.Context, id uint) (*models.Crag, error) {
	var crag models.Crag
	if err := s.db.WithContext(ctx).First(&crag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCragNotFound
		}
		return nil, err
	}
	return &crag, nil
}

// ListRoutes 按拓扑图和线号排序
func (s *CatalogService) ListRoutes(ctx context.Context, cragID uint) ([]models.Route, error) {
	if _, err := s.GetCrag(ctx, cragID); err != nil {
		return nil, err
	}
	var routes []models.Route
	err := s.db.WithContext(ctx).
		Where("crag_id = ?", cragID).
		Order("topo_id ASC, line_label ASC, id ASC").
		Find(&routes).Error
	return routes, err
}

func (s *CatalogService) CreateRoute(ctx context.Context, route *models.Route) error {
	if _, err := s.GetCrag(ctx, route.CragID); err != nil {
		return err
	}
	if route.TopoID != nil {
		var topo models.Topo
		if err := s.db.WithContext(ctx).Select("id", "crag_id").First(&topo, *route.TopoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopoNotFound
			}
			return err
		}
		if topo.CragID != route.CragID {
			return ErrTopoNotFound
		}
	}
	route.Grade = NormalizeGrade(route.Grade)
	return s.db.WithContext(ctx).Create(route).Error
}

// CragGrades 岩场难度分布
func (s *CatalogService) CragGrades(ctx context.Context, cragID uint) ([]GradeBucket, error) {
	if _, err := s.GetCrag(ctx, cragID); err != nil {
		return nil, err
	}
	var grades []string
	err := s.db.WithContext(ctx).Model(&models.Route{}).
		Where("crag_id = ?", cragID).
		Pluck("grade", &grades).Error
	if err != nil {
		return nil, err
	}
	return GradeHistogram(grades), nil
}

// GradeBucket 难度分布中的一档
type GradeBucket struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// UnknownGrade 无法识别的难度归入此档
const UnknownGrade = "?"

var frenchGrade = regexp.MustCompile(`^([1-9])([abc])?(\+)?$`)

// NormalizeGrade 统一法式难度写法，如 " 6A+ " -> "6a+"
func NormalizeGrade(grade string) string {
	return strings.ToLower(strings.TrimSpace(grade))
}

// gradeBand 返回分档名和排序值，"+" 并入同档
func gradeBand(grade string) (string, int, bool) {
	m := frenchGrade.FindStringSubmatch(NormalizeGrade(grade))
	if m == nil {
		return "", 0, false
	}
	rank := int(m[1][0]-'0') * 10
	if m[2] != "" {
		rank += int(m[2][0]-'a') + 1
	}
	return m[1] + m[2], rank, true
}

// GradeHistogram 按法式难度分档计数，从易到难排列，未知难度排在最后
func GradeHistogram(grades []string) []GradeBucket {
	counts := make(map[string]int)
	ranks := make(map[string]int)
	unknown := 0
	for _, g := range grades {
		band, rank, ok := gradeBand(g)
		if !ok {
			unknown++
			continue
		}
		counts[band]++
		ranks[band] = rank
	}

	buckets := make([]GradeBucket, 0, len(counts)+1)
	for band, n := range counts {
		buckets = append(buckets, GradeBucket{Grade: band, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return ranks[buckets[i].Grade] < ranks[buckets[j].Grade]
	})
	if unknown > 0 {
		buckets = append(buckets, GradeBucket{Grade: UnknownGrade, Count: unknown})
	}
	return buckets
}
