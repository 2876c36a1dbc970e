package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Palette maps tone keys ("50" … "950") to color strings. A Palette read from a
// tenant document may hold any subset of the canonical tones.
type Palette map[string]string

// Config is the free-form design-token document stored per tenant.
type Config struct {
	Colors        *Colors            `json:"colors,omitempty"`
	CustomPalette map[string]Palette `json:"customPalette,omitempty" validate:"omitempty,dive,keys,token,endkeys,dive,keys,tone,endkeys,cssvalue"`
	Typography    *Typography        `json:"typography,omitempty"`
	Spacing       map[string]string  `json:"spacing,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	BorderRadius  map[string]string  `json:"borderRadius,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	Shadows       map[string]string  `json:"shadows,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	Buttons       *Buttons           `json:"buttons,omitempty"`
}

// Colors groups plain light/dark tokens and the preferred palette location.
type Colors struct {
	Light         map[string]string  `json:"light,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	Dark          map[string]string  `json:"dark,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	CustomPalette map[string]Palette `json:"customPalette,omitempty" validate:"omitempty,dive,keys,token,endkeys,dive,keys,tone,endkeys,cssvalue"`
}

// Typography holds font stacks keyed by role (sans, serif, heading, ...).
type Typography struct {
	FontFamily map[string]string `json:"fontFamily,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
}

// Buttons holds utility class strings per variant and size.
type Buttons struct {
	Variants map[string]string `json:"variants,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
	Sizes    map[string]string `json:"sizes,omitempty" validate:"omitempty,dive,keys,token,endkeys,cssvalue"`
}

// Palettes returns the palette set, preferring colors.customPalette over the
// legacy top-level location.
func (c *Config) Palettes() map[string]Palette {
	if c == nil {
		return nil
	}
	if c.Colors != nil && len(c.Colors.CustomPalette) > 0 {
		return c.Colors.CustomPalette
	}
	return c.CustomPalette
}

// ErrInvalidConfig wraps every decode or validation failure of a theme document.
var ErrInvalidConfig = errors.New("invalid theme config")

// ValidationError lists the individual schema violations of a document.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

var (
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	tonePattern  = regexp.MustCompile(`^[0-9]{1,4}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func schema() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			return jsonName(field.Tag.Get("json"), field.Name)
		})
		_ = v.RegisterValidation("token", func(fl validator.FieldLevel) bool {
			return tokenPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("tone", func(fl validator.FieldLevel) bool {
			return tonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("cssvalue", func(fl validator.FieldLevel) bool {
			return !strings.ContainsAny(fl.Field().String(), "{}<>;\\\n\r")
		})
		validate = v
	})
	return validate
}

func jsonName(tag, fallback string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return fallback
	}
	return name
}

// Parse decodes and validates a theme document. Empty or "null" documents
// yield (nil, nil): the tenant simply has no theme.
func Parse(data []byte) (*Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var cfg Config
	if err := json.Unmarshal(trimmed, &cfg); err != nil {
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks token names, tone keys and values of an already decoded document.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	err := schema().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Issues: []string{err.Error()}}
	}
	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, fmt.Sprintf("%s failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return &ValidationError{Issues: issues}
}
