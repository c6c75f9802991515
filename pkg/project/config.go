package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const ConfigFileName = ".emberls.toml"

// Config holds the optional per-project overrides read from .emberls.toml.
type Config struct {
	PodModulePrefix   string   `toml:"pod_module_prefix" validate:"omitempty,excludesall=\\"`
	ModuleUnification *bool    `toml:"module_unification"`
	AddonPaths        []string `toml:"addon_paths" validate:"dive,required"`
	Ignore            []string `toml:"ignore" validate:"dive,required,glob"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	})
	return v
}

// ParseConfig decodes and validates the contents of a config file.
func ParseConfig(content string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, errors.Errorf("decoding %s: %w", ConfigFileName, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %q in %s", undecoded[0].String(), ConfigFileName)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Errorf("validating %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// LoadConfig reads the config file in dir. A missing file is an empty
// config.
func LoadConfig(fs afero.Fs, dir string) (*Config, error) {
	content, err := afero.ReadFile(fs, filepath.Join(dir, ConfigFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, errors.Errorf("reading %s: %w", ConfigFileName, err)
	}
	return ParseConfig(string(content))
}
