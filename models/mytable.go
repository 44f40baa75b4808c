package models

// LoginUser 持有写权限令牌的用户
type LoginUser struct {
	ID    int64  `gorm:"primary_key"`
	Name  string `gorm:"type:varchar(255)"`
	Token string `gorm:"type:varchar(255);uniqueIndex"`
}
