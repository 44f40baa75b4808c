package models

import "gorm.io/datatypes"

// LineRecord 线条修改记录
type LineRecord struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TopoID     uint   `gorm:"index"`
	LineLabel  int    `gorm:"index"`
	Type       string `gorm:"type:varchar(32)"` // create / replace / delete
	Username   string `gorm:"type:varchar(255)"`
	Date       string `gorm:"type:varchar(255)"`
	OldGeojson datatypes.JSON
	NewGeojson datatypes.JSON
}

func (LineRecord) TableName() string {
	return "line_records"
}
