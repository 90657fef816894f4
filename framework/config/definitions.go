package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-resolver/framework/container"
)

// ErrUnsupportedFormat is returned for definition files that are not
// YAML, TOML or JSON.
var ErrUnsupportedFormat = errors.New("unsupported definitions format")

// LoadDefinitions reads service definitions from path. The format follows
// the file extension.
//
//	cfg, err := config.LoadDefinitions("services.yaml")
//	c, err := container.New(cfg, extensions.Defaults(reg))
func LoadDefinitions(path string) (container.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return container.Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := ParseDefinitions(data, filepath.Ext(path))
	if err != nil {
		return container.Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseDefinitions decodes service definitions. format is "yaml", "yml",
// "toml" or "json", with or without a leading dot.
//
//	services:
//	  mailer:
//	    module: mail.smtp
//	    args: ["env:MAIL_HOST", "@logger"]
//	    extras: [closer]
func ParseDefinitions(data []byte, format string) (container.Config, error) {
	var cfg container.Config
	var err error

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return container.Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return container.Config{}, err
	}
	if cfg.Services == nil {
		cfg.Services = map[string]*container.Definition{}
	}
	return cfg, nil
}
