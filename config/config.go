package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/bikeshare/dataset"
)

// PathEnv names the environment variable holding the YAML config path.
const PathEnv = "CONFIG_FILE"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete runtime configuration.
type Config struct {
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
	Cities  []City `yaml:"cities" env:"-"`
	Filters Filters
	Output  Output
	Log     Log
}

// City maps a city name to its data file under DataDir.
type City struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Filters controls whether the selected month and day restrict the data.
type Filters struct {
	Apply bool `yaml:"apply"`
}

// Output controls how reports and artifacts are written.
type Output struct {
	Format    string `yaml:"format"`
	ChartDir  string `yaml:"chart_dir" env:"OUTPUT_CHART_DIR"`
	ExportDir string `yaml:"export_dir" env:"OUTPUT_EXPORT_DIR"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or env override is set.
func Default() Config {
	cfg := Config{
		DataDir: "./data",
		Output:  Output{Format: FormatText},
		Log:     Log{Level: "warn"},
	}
	for _, e := range dataset.DefaultEntries() {
		cfg.Cities = append(cfg.Cities, City{Name: e.City, File: e.File})
	}
	return cfg
}

// Load builds a Config from defaults, then the YAML file at path (or at
// $CONFIG_FILE when path is empty; no file is fine), then environment
// overrides. Nested fields map to PARENT_CHILD keys (FILTERS_APPLY) unless an
// `env` tag names the key.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := populateFromEnv(reflect.ValueOf(&cfg).Elem(), ""); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the city list and output format.
func (c Config) Validate() error {
	if len(c.Cities) == 0 {
		return errors.New("config: no cities configured")
	}
	seen := make(map[string]bool, len(c.Cities))
	for _, city := range c.Cities {
		if city.Name == "" || city.File == "" {
			return fmt.Errorf("config: city entry needs name and file: %+v", city)
		}
		if seen[city.Name] {
			return fmt.Errorf("config: duplicate city %q", city.Name)
		}
		seen[city.Name] = true
	}
	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	return nil
}

// Entries converts the city list for dataset.NewCatalog.
func (c Config) Entries() []dataset.Entry {
	out := make([]dataset.Entry, len(c.Cities))
	for i, city := range c.Cities {
		out[i] = dataset.Entry{City: city.Name, File: city.File}
	}
	return out
}

func loadFromFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	return nil
}

func populateFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		fieldType := t.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		rawKey := fieldType.Tag.Get("env")
		if rawKey == "-" {
			continue
		}

		var envKey string
		if rawKey != "" {
			envKey = normalizeKey("", rawKey)
		} else {
			envKey = normalizeKey(prefix, fieldType.Name)
		}

		if fieldVal.Kind() == reflect.Struct {
			if err := populateFromEnv(fieldVal, envKey); err != nil {
				return err
			}
			continue
		}

		if val, ok := os.LookupEnv(envKey); ok {
			if err := assign(fieldVal, val); err != nil {
				return fmt.Errorf("config: parse %s: %w", envKey, err)
			}
		}
	}
	return nil
}

func normalizeKey(prefix, key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", prefix, key)
}

func assign(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type().String())
	}
	return nil
}
