package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ItsNotGoodName/x-overlay/internal/core"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported settings file format")

// NewDriver picks a driver from the file extension. YAML files are handled
// directly, TOML and JSON go through viper.
func NewDriver(filePath string) (Driver, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		return NewYAML(filePath), nil
	case ".toml":
		return NewViper(filePath, "toml"), nil
	case ".json":
		return NewViper(filePath, "json"), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func NewYAML(filePath string) YAML {
	return YAML{
		filePath: filePath,
	}
}

type YAML struct {
	filePath string
}

// Exists implements Driver.
func (y YAML) Exists() (bool, error) {
	return core.FileExists(y.filePath)
}

func (y YAML) Read() (Settings, error) {
	file, err := os.Open(y.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	settings := Settings{}
	if err := yaml.NewDecoder(file).Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return settings, nil
}

func (y YAML) Write(settings Settings) error {
	filePathTmp := y.filePath + ".tmp"
	file, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := yaml.NewEncoder(file).Encode(settings); err != nil {
		file.Close()
		return err
	}
	file.Close()

	return os.Rename(filePathTmp, y.filePath)
}

func NewViper(filePath, configType string) Viper {
	return Viper{
		filePath:   filePath,
		configType: configType,
	}
}

type Viper struct {
	filePath   string
	configType string
}

func (v Viper) Exists() (bool, error) {
	return core.FileExists(v.filePath)
}

func (v Viper) Read() (Settings, error) {
	exists, err := v.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return Settings{}, nil
	}

	vp := viper.New()
	vp.SetConfigFile(v.filePath)
	vp.SetConfigType(v.configType)
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	settings := Settings{}
	for _, key := range vp.AllKeys() {
		settings[key] = vp.GetString(key)
	}
	return settings, nil
}

func (v Viper) Write(settings Settings) error {
	vp := viper.New()
	vp.SetConfigType(v.configType)
	for key, value := range settings {
		vp.Set(key, value)
	}

	// viper picks the encoder from the extension
	filePathTmp := v.filePath + ".tmp." + v.configType
	if err := vp.WriteConfigAs(filePathTmp); err != nil {
		return err
	}

	return os.Rename(filePathTmp, v.filePath)
}
