package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode   `yaml:"mode"`
	HTTPAddr  string `yaml:"http_addr"`
	PublicURL string `yaml:"public_url"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	BlobBasePath string `yaml:"blob_base_path"` // study materials live here

	AuthSecret      string `yaml:"auth_secret"`
	EnableLocalAuth bool   `yaml:"enable_local_auth"`

	AdminUser     string `yaml:"admin_user"`
	AdminPassHash string `yaml:"admin_pass_hash"` // bcrypt

	CORSOriginsOnline  []string `yaml:"cors_origins_online"`
	CORSOriginsOffline []string `yaml:"cors_origins_offline"`
}

// Load reads the optional YAML file named by CONFIG_FILE, overlays any
// explicitly-set environment variables, then fills remaining zero fields
// with defaults. Env-only deployments just skip the file.
func Load() (Config, error) {
	// set before unmarshal: yaml only touches keys present in the file
	cfg := Config{EnableLocalAuth: true}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// FromEnv keeps the env-only path available for tests and tooling.
func FromEnv() Config {
	cfg := Config{EnableLocalAuth: true}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg
}

// applyEnv overwrites fields whose environment variable is set.
func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("MODE"); ok {
		cfg.Mode = Mode(v)
	}
	setStr(&cfg.HTTPAddr, "HTTP_ADDR")
	setStr(&cfg.PublicURL, "PUBLIC_URL")
	setStr(&cfg.DBDriver, "DB_DRIVER")
	setStr(&cfg.DBDSN, "DB_DSN")
	setStr(&cfg.BlobBasePath, "BLOB_BASE_PATH")
	setStr(&cfg.AuthSecret, "AUTH_HMAC_SECRET")
	setStr(&cfg.AdminUser, "ADMIN_USER")
	setStr(&cfg.AdminPassHash, "ADMIN_PASS_HASH")
	if _, ok := os.LookupEnv("ENABLE_LOCAL_AUTH"); ok {
		cfg.EnableLocalAuth = envBool("ENABLE_LOCAL_AUTH", cfg.EnableLocalAuth)
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS_ONLINE"); ok {
		cfg.CORSOriginsOnline = splitCSV(v)
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS_OFFLINE"); ok {
		cfg.CORSOriginsOffline = splitCSV(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeOffline
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.BlobBasePath == "" {
		cfg.BlobBasePath = "./data"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "supersecret-dev-key"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if len(cfg.CORSOriginsOnline) == 0 {
		cfg.CORSOriginsOnline = []string{"https://examprephub.in"}
	}
	if len(cfg.CORSOriginsOffline) == 0 {
		cfg.CORSOriginsOffline = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
