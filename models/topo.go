package models

import "gorm.io/datatypes"

// Topo 拓扑图：岩壁照片及其线路标注
type Topo struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CragID      uint   `gorm:"index" json:"crag_id"`
	FileName    string `gorm:"type:varchar(255);not null" json:"file_name"`
	Thumbnail   string `gorm:"type:varchar(255)" json:"thumbnail"`
	MimeType    string `gorm:"type:varchar(64)" json:"mime_type"`
	Description string `json:"description"`
	// LineSegments GeoJSON FeatureCollection，坐标为单位正方形
	LineSegments datatypes.JSON `json:"line_segments"`
	Longitude    float64        `json:"longitude"`
	Latitude     float64        `json:"latitude"`
	Exposition   string         `gorm:"type:varchar(16)" json:"exposition"`
	Width        int            `json:"width"`
	ImageWidth   int            `json:"image_width"`
	ImageHeight  int            `json:"image_height"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Topo) TableName() string {
	return "topos"
}
