package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/GrainArc/CragTopo/models"
)

func TestGradeHistogram(t *testing.T) {
	tests := []struct {
		name   string
		grades []string
		want   []GradeBucket
	}{
		{"empty", nil, []GradeBucket{}},
		{
			"plus merges into band",
			[]string{"6a", "6a+", "6A", "6b"},
			[]GradeBucket{{"6a", 3}, {"6b", 1}},
		},
		{
			"ordered easy to hard",
			[]string{"7c+", "5", "6c", "5c", "8a"},
			[]GradeBucket{{"5", 1}, {"5c", 1}, {"6c", 1}, {"7c", 1}, {"8a", 1}},
		},
		{
			"unknown last",
			[]string{"5.10a", "", "6b", "V4"},
			[]GradeBucket{{"6b", 1}, {UnknownGrade, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeHistogram(tt.grades)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GradeHistogram(%q) = %v, want %v", tt.grades, got, tt.want)
			}
		})
	}
}

func TestCatalogService(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	topos := NewTopoService(db, nil, nil)
	ctx := t.Context()

	area := models.Area{Name: "Getu"}
	if err := svc.CreateArea(ctx, &area); err != nil {
		t.Fatal(err)
	}
	if err := svc.CreateCrag(ctx, &models.Crag{AreaID: area.ID + 100, Name: "nowhere"}); !errors.Is(err, ErrAreaNotFound) {
		t.Errorf("crag in missing area err = %v", err)
	}
	crag := models.Crag{AreaID: area.ID, Name: "Great Arch"}
	if err := svc.CreateCrag(ctx, &crag); err != nil {
		t.Fatal(err)
	}
	other := models.Crag{AreaID: area.ID, Name: "Side Wall"}
	if err := svc.CreateCrag(ctx, &other); err != nil {
		t.Fatal(err)
	}

	crags, err := svc.ListCrags(ctx, area.ID)
	if err != nil || len(crags) != 2 || crags[0].Name != "Great Arch" {
		t.Fatalf("ListCrags = %+v, %v", crags, err)
	}

	topo := seedTopo(t, topos, crag.ID, "arch.jpg")
	label := 1
	if err := svc.CreateRoute(ctx, &models.Route{CragID: other.ID, TopoID: &topo.ID, Name: "wrong"}); !errors.Is(err, ErrTopoNotFound) {
		t.Errorf("route on other crag's topo err = %v", err)
	}
	for _, r := range []models.Route{
		{CragID: crag.ID, TopoID: &topo.ID, LineLabel: &label, Name: "Corner", Grade: " 6A+ "},
		{CragID: crag.ID, Name: "Roof", Grade: "7b"},
		{CragID: crag.ID, Name: "Slab", Grade: "6a"},
	} {
		if err := svc.CreateRoute(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}

	routes, err := svc.ListRoutes(ctx, crag.ID)
	if err != nil || len(routes) != 3 {
		t.Fatalf("ListRoutes = %+v, %v", routes, err)
	}
	grades, err := svc.CragGrades(ctx, crag.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []GradeBucket{{"6a", 2}, {"7b", 1}}
	if !reflect.DeepEqual(grades, want) {
		t.Errorf("CragGrades = %v, want %v", grades, want)
	}

	if _, err := svc.GetCrag(ctx, 999); !errors.Is(err, ErrCragNotFound) {
		t.Errorf("GetCrag missing err = %v", err)
	}
}
