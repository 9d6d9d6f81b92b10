package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DatabaseURL is the conventional PostgreSQL connection string, usable as storage.url
	DatabaseURL = "postgres://localhost:5432/mydb"
	APIVersion  = "v1.2.0"
)

// Sample is the user built by the default program run
type Sample struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Server struct {
	Listen string `yaml:"listen"`
}

type Storage struct {
	// URL selects the backend: file://path, sqlite://path, postgres://...
	URL string `yaml:"url"`
}

type Service struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
}

type Config struct {
	Sample  Sample  `yaml:"sample"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Service Service `yaml:"service"`
}

func Default() Config {
	return Config{
		Sample: Sample{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: "secret123",
		},
		Server:  Server{Listen: ":8080"},
		Storage: Storage{URL: "file://users.json"},
		Service: Service{
			Name:        "userkit",
			DisplayName: "userkit user API",
			Description: "Serves the userkit user API over HTTP",
		},
	}
}

// Load reads YAML config from path. A missing file yields Default().
// Fields left empty in the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	merge(&cfg, file)
	return cfg, nil
}

// Save writes cfg as YAML
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func merge(dst *Config, src Config) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Sample.Name, src.Sample.Name)
	set(&dst.Sample.Email, src.Sample.Email)
	set(&dst.Sample.Password, src.Sample.Password)
	set(&dst.Server.Listen, src.Server.Listen)
	set(&dst.Storage.URL, src.Storage.URL)
	set(&dst.Service.Name, src.Service.Name)
	set(&dst.Service.DisplayName, src.Service.DisplayName)
	set(&dst.Service.Description, src.Service.Description)
}
