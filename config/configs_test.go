package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "none.xml")); err != nil {
		t.Fatal(err)
	}
	if DBType != "sqlite" || MainRouter != ":8080" || DSN != "cragtopo.db" {
		t.Errorf("DBType=%q MainRouter=%q DSN=%q", DBType, MainRouter, DSN)
	}
}

func TestLoadXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xml")
	xml := `<config>
  <MainRouter>:9000</MainRouter>
  <dbtype> Postgres </dbtype>
  <host>db</host><port>5432</port><user>climb</user><password>pw</password><dbname>topo</dbname>
  <upload>/data/topos</upload>
  <PublicURL>https://topo.example/</PublicURL>
  <redis>redis:6379</redis>
</config>`
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatal(err)
	}
	if DBType != "postgres" || MainRouter != ":9000" || UploadDir != "/data/topos" || RedisAddr != "redis:6379" {
		t.Errorf("config = %+v", MainConfig)
	}
	if PublicURL != "https://topo.example" {
		t.Errorf("PublicURL = %q", PublicURL)
	}
	if !strings.Contains(DSN, "host=db") || !strings.Contains(DSN, "dbname=topo") {
		t.Errorf("DSN = %q", DSN)
	}
	if MainConfig.MaxUploadMB != 20 {
		t.Errorf("MaxUploadMB = %d", MainConfig.MaxUploadMB)
	}
}

func TestBuildDSNMySQL(t *testing.T) {
	dsn := BuildDSN(Config{DBType: "mysql", Username: "u", Password: "p", Host: "h", Port: "3306", Dbname: "d"})
	if dsn != "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=UTC" {
		t.Errorf("dsn = %q", dsn)
	}
}
