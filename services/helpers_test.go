package services

import (
	"path/filepath"
	"testing"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/models"
	"github.com/paulmach/orb"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open("sqlite", filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedCrag 创建区域和岩场
func seedCrag(t *testing.T, db *gorm.DB) models.Crag {
	t.Helper()
	area := models.Area{Name: "Yangshuo"}
	if err := db.Create(&area).Error; err != nil {
		t.Fatal(err)
	}
	crag := models.Crag{AreaID: area.ID, Name: "White Mountain"}
	if err := db.Create(&crag).Error; err != nil {
		t.Fatal(err)
	}
	return crag
}

func seedTopo(t *testing.T, svc *TopoService, cragID uint, fileName string) models.Topo {
	t.Helper()
	topo := models.Topo{CragID: cragID, FileName: fileName}
	if err := svc.Create(t.Context(), &topo); err != nil {
		t.Fatal(err)
	}
	return topo
}

func lineRequest(label int, asNew bool, coords orb.LineString) editor.SubmitRequest {
	seg := editor.NewLineSegment(label, coords)
	return editor.SubmitRequest{LineLabel: label, AsNew: asNew, Feature: &seg}
}
