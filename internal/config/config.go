package config

import (
	"log"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port     string `toml:"port"`
	DBDSN    string `toml:"db_dsn"`
	MediaDir string `toml:"media_dir"`
	LogFile  string `toml:"log_file"`
}

// Load reads CONFIG_FILE (TOML) if set, lets individual env vars override,
// then fills defaults.
func Load() Config {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("[warn] could not open config file %s: %v", path, err)
		} else {
			if derr := toml.NewDecoder(f).Decode(&cfg); derr != nil {
				log.Printf("[warn] could not parse config file %s: %v", path, derr)
			}
			_ = f.Close()
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = "bloxmarket.db" // sqlite file in project root
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "./media"
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "./bloxmarket.log"
	}

	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile)
	return cfg
}
