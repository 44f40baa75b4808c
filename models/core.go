package models

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/GrainArc/CragTopo/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open 按数据库类型打开连接
func Open(dbType, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(SqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", dbType)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

// SqliteDSN 补全事务加锁与忙等待参数，写事务开始即取得写锁，并发写入排队等待
func SqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "_busy_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// InitDB 连接主数据库、迁移表结构并写入管理员令牌
func InitDB() error {
	level := logger.Silent
	if config.MainConfig.Debug {
		level = logger.Info
	}
	db, err := Open(config.DBType, config.DSN, level)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := Migrate(db); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if config.MainConfig.AdminToken != "" {
		if err := EnsureUser(db, config.MainConfig.AdminName, config.MainConfig.AdminToken); err != nil {
			log.Printf("创建管理员失败: %v", err)
		}
	}
	DB = db
	log.Printf("数据库初始化成功 (%s)", config.DBType)
	return nil
}

// Migrate 批量迁移所有表
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&Area{},
		&Crag{},
		&Route{},
		&Topo{},
		&LineRecord{},
		&LoginUser{},
	}
	return db.AutoMigrate(models...)
}

// EnsureUser 令牌不存在时创建用户
func EnsureUser(db *gorm.DB, name, token string) error {
	var existing LoginUser
	err := db.Where("token = ?", token).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&LoginUser{Name: name, Token: token}).Error
	}
	return err
}
