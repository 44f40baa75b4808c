package models

// Area 攀岩区域
type Area struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);index;not null" json:"name"`
	Description string  `json:"description"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Area) TableName() string {
	return "areas"
}

// Crag 岩场
type Crag struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	AreaID      uint    `gorm:"index" json:"area_id"`
	Name        string  `gorm:"type:varchar(255);index;not null" json:"name"`
	Description string  `json:"description"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Crag) TableName() string {
	return "crags"
}

// Route 线路，LineLabel 对应拓扑图上的线号
type Route struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CragID    uint   `gorm:"index" json:"crag_id"`
	TopoID    *uint  `gorm:"index" json:"topo_id,omitempty"`
	LineLabel *int   `json:"line_label,omitempty"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Grade     string `gorm:"type:varchar(16)" json:"grade"`
	Length    int    `json:"length"`
	Bolts     int    `json:"bolts"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}
