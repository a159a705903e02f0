// Package panel defines the per-cycle configuration of a choropleth panel.
package panel

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Map regions the renderer knows how to draw.
const (
	MapWorld  = "world"
	MapUS     = "us"
	MapEurope = "europe"
)

// Queries is the saved-query selection plus the raw fragment appended to the
// flat query.
type Queries struct {
	savedquery.Selection `mapstructure:",squash" yaml:",inline"`
	Custom               string `json:"custom" mapstructure:"custom" yaml:"custom"`
}

// Config is immutable for the duration of one refresh cycle. Replace it
// wholesale rather than mutating a shared instance.
type Config struct {
	Field      string   `json:"field" mapstructure:"field" yaml:"field"`
	Size       int      `json:"size" mapstructure:"size" yaml:"size" validate:"gt=0"`
	Exclude    []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`
	Colors     []string `json:"colors" mapstructure:"colors" yaml:"colors" validate:"min=2,dive,hexcolor"`
	IndexLimit int      `json:"index_limit" mapstructure:"index_limit" yaml:"index_limit" validate:"gte=0"`
	Indices    []string `json:"indices" mapstructure:"indices" yaml:"indices"`
	Map        string   `json:"map" mapstructure:"map" yaml:"map" validate:"oneof=world us europe"`
	Spyable    bool     `json:"spyable" mapstructure:"spyable" yaml:"spyable"`
	Queries    Queries  `json:"queries" mapstructure:"queries" yaml:"queries"`
}

// Defaults returns the out-of-the-box panel configuration.
func Defaults() Config {
	return Config{
		Size:    100,
		Exclude: []string{},
		Colors:  []string{"#A0E2E2", "#265656"},
		Map:     MapWorld,
		Spyable: true,
		Queries: Queries{
			Selection: savedquery.Selection{
				Mode:  savedquery.ModeAll,
				IDs:   []string{},
				Query: savedquery.MatchAll,
			},
		},
	}
}

// WithDefaults fills zero-valued fields of c from Defaults. Spyable is taken
// as given since false is a meaningful edit.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.Size == 0 {
		c.Size = d.Size
	}
	if c.Exclude == nil {
		c.Exclude = d.Exclude
	}
	if len(c.Colors) == 0 {
		c.Colors = d.Colors
	}
	if c.Map == "" {
		c.Map = d.Map
	}
	if c.Queries.Mode == "" {
		c.Queries.Mode = d.Queries.Mode
	}
	if c.Queries.IDs == nil {
		c.Queries.IDs = d.Queries.IDs
	}
	if c.Queries.Query == "" {
		c.Queries.Query = d.Queries.Query
	}
	return c
}

// ExcludeList returns the excluded categories deduplicated, in config order.
func (c Config) ExcludeList() []string {
	seen := make(map[string]struct{}, len(c.Exclude))
	out := make([]string, 0, len(c.Exclude))
	for _, e := range c.Exclude {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ActiveIndices applies IndexLimit to Indices. A limit of 0 means no limit.
func (c Config) ActiveIndices() []string {
	if c.IndexLimit > 0 && len(c.Indices) > c.IndexLimit {
		return c.Indices[:c.IndexLimit]
	}
	return c.Indices
}

// Validate checks structural constraints. An empty Field is not a validation
// failure here; query composition reports it as a missing target field.
func (c Config) Validate() error {
	svc := validatorService()
	err := svc.v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return errors.Wrap(err, errors.ErrCodeValidation, "panel config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(svc.trans))
	}
	return errors.New(errors.ErrCodeValidation, "invalid panel config").WithDetail(strings.Join(msgs, "; "))
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*out = v
	}
	return ok
}

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

func validatorService() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// report mapstructure names, matching the config file keys
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("mapstructure")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &validatorSvc{v: v, trans: trans}
	})
	return vSvc
}

//Personal.AI order the ending
