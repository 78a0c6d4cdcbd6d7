package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-core-fx/config"
)

type http struct {
	Address     string   `koanf:"address"`
	ProxyHeader string   `koanf:"proxy_header"`
	Proxies     []string `koanf:"proxies"`
}

type svnConfig struct {
	Binary     string `koanf:"binary"`
	GlobalArgs string `koanf:"global_args"`
	HostOS     string `koanf:"host_os"`
}

type auditConfig struct {
	Dir             string `koanf:"dir"`
	FileName        string `koanf:"file_name"`
	TruncateOnStart bool   `koanf:"truncate_on_start"`
}

type Config struct {
	HTTP http `koanf:"http"`

	SVN   svnConfig   `koanf:"svn"`
	Audit auditConfig `koanf:"audit"`
}

func Default() Config {
	//nolint:exhaustruct //default values
	return Config{
		HTTP: http{
			Address:     "127.0.0.1:3000",
			ProxyHeader: "X-Forwarded-For",
			Proxies:     []string{},
		},

		SVN: svnConfig{
			Binary:     "svn",
			GlobalArgs: "",
			HostOS:     runtime.GOOS,
		},

		Audit: auditConfig{
			Dir:             "",
			FileName:        "log.txt",
			TruncateOnStart: true,
		},
	}
}

func New() (Config, error) {
	cfg := Default()

	options := []config.Option{}
	if yamlPath := os.Getenv("CONFIG_PATH"); yamlPath != "" {
		options = append(options, config.WithLocalYAML(yamlPath))
	}

	if err := config.Load(&cfg, options...); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
