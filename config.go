package bindgen

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/bindgen/cpp"
)

// DefaultBanner is written at the top of every generated header.
const DefaultBanner = "// Code generated by bindgen. DO NOT EDIT."

// Config holds the configuration for header generation.
type Config struct {
	// Packages are the Go package patterns analyzed by the source provider.
	// e.g. []string{"github.com/myorg/game/scene/..."}
	Packages []string `yaml:"packages" validate:"dive,required"`

	// Dir is the working directory for package loading.
	Dir string `yaml:"dir"`

	// Manifests are YAML type manifests read by the manifest provider.
	Manifests []string `yaml:"manifests" validate:"dive,required"`

	// Namespace is the C++ namespace that Go package namespaces are nested
	// in. e.g. []string{"Game"} maps package scene to Game::scene.
	Namespace []string `yaml:"namespace" validate:"dive,required,excludesall=:<>*"`

	// StripPackagePrefix removes this prefix from package paths before they
	// become namespaces. e.g. "github.com/myorg/game" makes
	// "github.com/myorg/game/scene" → "scene".
	StripPackagePrefix string `yaml:"strip_package_prefix"`

	// HeaderExtension is appended to every header path.
	// Default: ".h"
	HeaderExtension string `yaml:"header_extension" validate:"omitempty,startswith=.,excludesall=/\\"`

	// PlaceholderFile collects placeholder declarations for records whose
	// type could not be determined.
	// Default: "bindgen/Placeholders" + HeaderExtension
	PlaceholderFile string `yaml:"placeholder_file"`

	// IndentStyle is "space" or "tab".
	// Default: "space"
	IndentStyle string `yaml:"indent_style" validate:"omitempty,oneof=space tab"`

	// IndentSize is the number of spaces per level when IndentStyle is "space".
	// Default: 2
	IndentSize int `yaml:"indent_size" validate:"gte=0,lte=16"`

	// LineEnding is "lf" or "crlf".
	// Default: "lf"
	LineEnding string `yaml:"line_ending" validate:"omitempty,oneof=lf crlf"`

	// Banner is written at the top of every header. Set NoBanner to omit it.
	// Default: DefaultBanner
	Banner   string `yaml:"banner"`
	NoBanner bool   `yaml:"no_banner"`

	// TrailingNewline ensures every header ends with a newline.
	// Default: true
	TrailingNewline *bool `yaml:"trailing_newline"`

	// Concurrency bounds parallel discovery and emission.
	// Zero means one task per CPU.
	Concurrency int `yaml:"concurrency" validate:"gte=0"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
// Relative package directories and manifests are kept as written.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return &cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Every violation is reported.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Wrap(err, "invalid config")
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Namespace()+": "+formatValidationError(ve))
	}
	return errors.Newf("invalid config: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", ve.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	default:
		return "failed " + ve.Tag() + " validation"
	}
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.IndentStyle == "" {
		result.IndentStyle = "space"
	}
	if result.IndentSize == 0 {
		result.IndentSize = 2
	}
	if result.LineEnding == "" {
		result.LineEnding = "lf"
	}
	if result.HeaderExtension == "" {
		result.HeaderExtension = ".h"
	}
	if result.PlaceholderFile == "" {
		result.PlaceholderFile = "bindgen/Placeholders" + result.HeaderExtension
	}
	if result.Banner == "" && !result.NoBanner {
		result.Banner = DefaultBanner
	}
	if result.NoBanner {
		result.Banner = ""
	}
	if result.TrailingNewline == nil {
		trailing := true
		result.TrailingNewline = &trailing
	}

	return &result
}

// generatorConfig converts a defaulted Config to the emitter's layout options.
func (c *Config) generatorConfig() cpp.GeneratorConfig {
	return cpp.GeneratorConfig{
		IndentStyle:     c.IndentStyle,
		IndentSize:      c.IndentSize,
		LineEnding:      c.LineEnding,
		TrailingNewline: c.TrailingNewline == nil || *c.TrailingNewline,
		HeaderExtension: c.HeaderExtension,
		PlaceholderFile: c.PlaceholderFile,
		Banner:          c.Banner,
		Concurrency:     c.Concurrency,
	}
}
