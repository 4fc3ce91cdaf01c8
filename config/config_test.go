package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-unit-testing-2026"

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("SST_AUTH_JWT_SECRET", testSecret)
	t.Setenv("SST_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("环境变量应覆盖默认值，期望 9090，实际 %d", cfg.Server.Port)
	}
	if cfg.Compliance.DefaultWarningWindowDays != 30 {
		t.Errorf("期望默认预警窗口 30 天，实际 %d", cfg.Compliance.DefaultWarningWindowDays)
	}
	if cfg.Redis.RequirementsTTL != 10*time.Minute {
		t.Errorf("期望缓存 TTL 10m，实际 %v", cfg.Redis.RequirementsTTL)
	}
	if cfg.Auth.Issuer != "conser-control" {
		t.Errorf("期望 issuer=conser-control，实际 %s", cfg.Auth.Issuer)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
auth:
  jwt_secret: "` + testSecret + `"
compliance:
  default_warning_window_days: 45
  timezone: "UTC"
storage:
  enabled: true
  bucket: "sst-attachments"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Compliance.DefaultWarningWindowDays != 45 {
		t.Errorf("期望 45，实际 %d", cfg.Compliance.DefaultWarningWindowDays)
	}
	if cfg.Compliance.Location() != time.UTC {
		t.Errorf("期望 UTC 时区，实际 %v", cfg.Compliance.Location())
	}
	if !cfg.Storage.Enabled || cfg.Storage.Bucket != "sst-attachments" {
		t.Errorf("存储配置未加载: %+v", cfg.Storage)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: 8080},
			Auth:       AuthConfig{JWTSecret: testSecret},
			Compliance: ComplianceConfig{DefaultWarningWindowDays: 30, Timezone: "America/Sao_Paulo"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"缺少密钥", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"预警窗口为负", func(c *Config) { c.Compliance.DefaultWarningWindowDays = -1 }},
		{"启用存储但无 bucket", func(c *Config) { c.Storage.Enabled = true }},
		{"时区无效", func(c *Config) { c.Compliance.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}
