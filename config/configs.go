package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

var MainRouter string
var DSN string
var DBType string
var UploadDir string
var PublicURL string
var RedisAddr string
var MainConfig Config

type Config struct {
	XMLName    xml.Name `xml:"config"`
	MainRouter string   `xml:"MainRouter"`
	// DBType postgres / mysql / sqlite
	DBType     string `xml:"dbtype"`
	Dbname     string `xml:"dbname"`
	Host       string `xml:"host"`
	Port       string `xml:"port"`
	Username   string `xml:"user"`
	Password   string `xml:"password"`
	SqlitePath string `xml:"sqlite"`
	UploadDir  string `xml:"upload"`
	PublicURL  string `xml:"PublicURL"`
	RedisAddr  string `xml:"redis"`
	AdminName  string `xml:"AdminName"`
	AdminToken string `xml:"AdminToken"`
	// MaxUploadMB 拓扑图片上传大小上限
	MaxUploadMB int  `xml:"MaxUploadMB"`
	Debug       bool `xml:"debug"`
}

// Default 缺省配置：本地 sqlite，监听 8080
func Default() Config {
	return Config{
		MainRouter:  ":8080",
		DBType:      "sqlite",
		SqlitePath:  "cragtopo.db",
		UploadDir:   "./uploads",
		PublicURL:   "http://localhost:8080",
		AdminName:   "admin",
		MaxUploadMB: 20,
	}
}

// Load 读取 XML 配置，文件不存在时使用缺省配置
func Load(path string) error {
	cfg := Default()
	xmlFile, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("配置文件 %s 不存在，使用缺省配置", path)
	case err != nil:
		return fmt.Errorf("打开配置文件失败: %w", err)
	default:
		defer xmlFile.Close()
		if err := xml.NewDecoder(xmlFile).Decode(&cfg); err != nil {
			return fmt.Errorf("解析配置文件失败: %w", err)
		}
	}
	Apply(cfg)
	return nil
}

// Apply 设置全局配置并组装 DSN
func Apply(cfg Config) {
	def := Default()
	if cfg.MainRouter == "" {
		cfg.MainRouter = def.MainRouter
	}
	if cfg.DBType == "" {
		cfg.DBType = def.DBType
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = def.UploadDir
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = def.MaxUploadMB
	}
	cfg.DBType = strings.ToLower(strings.TrimSpace(cfg.DBType))

	MainConfig = cfg
	MainRouter = cfg.MainRouter
	DBType = cfg.DBType
	UploadDir = cfg.UploadDir
	PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	RedisAddr = cfg.RedisAddr
	DSN = BuildDSN(cfg)
}

// BuildDSN 根据数据库类型组装连接串
func BuildDSN(cfg Config) string {
	switch cfg.DBType {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", cfg.Host, cfg.Username, cfg.Password, cfg.Dbname, cfg.Port)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Dbname)
	default:
		if cfg.SqlitePath == "" {
			return Default().SqlitePath
		}
		return cfg.SqlitePath
	}
}
