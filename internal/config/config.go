// Package config содержит логику чтения конфигурации сервиса корзины.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultUserType   = "regular"
)

// Config содержит параметры конфигурации сервиса корзины.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseURI    string `env:"DATABASE_URI"`
	CatalogAddress string `env:"CATALOG_ADDRESS"`
	CartUserType   string `env:"CART_USER_TYPE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.CatalogAddress, "c", "", "catalog service address")
	flag.StringVar(&cfg.CartUserType, "u", defaultUserType, "user type of the cart owner")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.CatalogAddress != "" {
		cfg.CatalogAddress = envCfg.CatalogAddress
	}
	if envCfg.CartUserType != "" {
		cfg.CartUserType = envCfg.CartUserType
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.CartUserType == "" {
		cfg.CartUserType = defaultUserType
	}

	return cfg, nil
}
