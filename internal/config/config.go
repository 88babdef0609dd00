package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration, loaded from config.toml
// next to the executable.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Shipment ShipmentConfig `toml:"shipment"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig storage locations.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ShipmentConfig seeds the shipment parameter preset on first run.
// Exchange rates stay at zero so the user must enter real ones before
// calculating.
type ShipmentConfig struct {
	DefaultContainerVolume float64 `toml:"default_container_volume"`
	DefaultImportTaxRate   float64 `toml:"default_import_tax_rate"`
}

// LoadConfigInfo carries metadata about how the config was loaded.
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20470,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Shipment: ShipmentConfig{
			DefaultContainerVolume: 66, // 40ft HQ container
			DefaultImportTaxRate:   0.17,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory holding the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo loads config.toml and reports load metadata.
// A missing file is not an error; the defaults apply.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	// Environment overrides for local runs.
	if v := os.Getenv("IMPORTCOST_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}

	return config, info, nil
}

// LoadConfig loads config.toml from the executable's directory.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig writes the configuration back to config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir creates the data directory and its subdirectories,
// returning the absolute data dir path.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath builds a path inside the data directory.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	exeDir, _ := GetExeDir()
	if exeDir == "" {
		exeDir = "."
	}
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}
	return filepath.Join(dataDir, subdir, filename)
}
