package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultCategory is the top-level key read from a catalog document.
const DefaultCategory = "default"

//go:embed default_catalog.yaml
var defaultDocument []byte

type courtSize struct {
	Standard float64 `koanf:"standard"`
}

type document struct {
	Version            string               `koanf:"version"`
	Base               map[string]float64   `koanf:"base"`
	Flooring           map[string]float64   `koanf:"flooring"`
	CourtSizes         map[string]courtSize `koanf:"courtSizes"`
	Equipment          map[string]float64   `koanf:"equipment"`
	AdditionalFeatures map[string]float64   `koanf:"additionalFeatures"`
	Lighting           map[string]float64   `koanf:"lighting"`
	Roof               map[string]float64   `koanf:"roof"`
	Sports             []Sport              `koanf:"sports"`
	Kits               map[string][]KitItem `koanf:"kits"`
}

// Load reads a catalog document from path, or the built-in document when path
// is empty, and returns the entry stored under category.
func Load(ctx context.Context, path, category string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if category == "" {
		category = DefaultCategory
	}

	var provider koanf.Provider = rawbytes.Provider(defaultDocument)
	if path != "" {
		provider = file.Provider(path)
	}

	k := koanf.New(".")
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: load %q: %v", ErrCatalogUnavailable, path, err)
	}
	if !k.Exists(category) {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, category, ErrCategoryNotFound)
	}

	var doc document
	if err := k.Cut(category).UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidCatalog, category, err)
	}
	return doc.build(category)
}

// MustDefault returns the built-in catalog and panics if it cannot be decoded.
func MustDefault() *Catalog {
	c, err := Load(context.Background(), "", DefaultCategory)
	if err != nil {
		panic(err)
	}
	return c
}

func (d document) build(category string) (*Catalog, error) {
	areas := make(map[string]float64, len(d.CourtSizes))
	for sport, size := range d.CourtSizes {
		areas[sport] = size.Standard
	}
	opts := []Option{
		WithVersion(d.Version),
		WithCategory(category),
		WithRates(TableBase, d.Base),
		WithRates(TableFlooring, d.Flooring),
		WithRates(TableEquipment, d.Equipment),
		WithRates(TableAdditionalFeatures, d.AdditionalFeatures),
		WithRates(TableLighting, d.Lighting),
		WithRates(TableRoof, d.Roof),
		WithStandardAreas(areas),
		WithSports(d.Sports...),
	}
	for sport, items := range d.Kits {
		opts = append(opts, WithKit(sport, items...))
	}
	return New(opts...)
}
