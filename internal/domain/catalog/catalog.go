// Package catalog holds the rate tables used to price a quotation.
package catalog

import "fmt"

// Table names a rate table inside the catalog.
type Table string

// Rate tables understood by the estimator.
const (
	TableBase               Table = "base"
	TableFlooring           Table = "flooring"
	TableEquipment          Table = "equipment"
	TableAdditionalFeatures Table = "additionalFeatures"
	TableLighting           Table = "lighting"
	TableRoof               Table = "roof"
)

// Tables lists every rate table in display order.
var Tables = []Table{
	TableBase,
	TableFlooring,
	TableEquipment,
	TableAdditionalFeatures,
	TableLighting,
	TableRoof,
}

// DrainageKey is the additional-features entry priced per square metre for drainage.
const DrainageKey = "drainage-system"

// Sport describes a sport offered in the configurator.
type Sport struct {
	ID   string `koanf:"id" json:"id"`
	Name string `koanf:"name" json:"name"`
	Icon string `koanf:"icon" json:"image"`
}

// KitItem is one entry of a sport's default equipment kit.
type KitItem struct {
	ID       string `koanf:"id" json:"id"`
	Name     string `koanf:"name" json:"name"`
	Quantity int    `koanf:"quantity" json:"quantity"`
}

// Catalog is an immutable set of rate tables. The zero rate is returned for
// any key that is not present, so lookups never fail.
type Catalog struct {
	version       string
	category      string
	rates         map[Table]map[string]float64
	standardAreas map[string]float64
	sports        []Sport
	kits          map[string][]KitItem
}

// Option configures a Catalog built with New.
type Option func(*Catalog)

// WithVersion sets the catalog version recorded on quotations.
func WithVersion(version string) Option {
	return func(c *Catalog) {
		c.version = version
	}
}

// WithCategory sets the category name the catalog was loaded from.
func WithCategory(category string) Option {
	return func(c *Catalog) {
		c.category = category
	}
}

// WithRates sets the entries of a rate table.
func WithRates(table Table, rates map[string]float64) Option {
	return func(c *Catalog) {
		m := make(map[string]float64, len(rates))
		for k, v := range rates {
			m[k] = v
		}
		c.rates[table] = m
	}
}

// WithStandardAreas sets the standard court area per sport.
func WithStandardAreas(areas map[string]float64) Option {
	return func(c *Catalog) {
		for k, v := range areas {
			c.standardAreas[k] = v
		}
	}
}

// WithSports sets the sports list.
func WithSports(sports ...Sport) Option {
	return func(c *Catalog) {
		c.sports = append([]Sport(nil), sports...)
	}
}

// WithKit sets the default equipment kit of a sport.
func WithKit(sport string, items ...KitItem) Option {
	return func(c *Catalog) {
		c.kits[sport] = append([]KitItem(nil), items...)
	}
}

// New builds a catalog and rejects negative rates or areas.
func New(opts ...Option) (*Catalog, error) {
	c := &Catalog{
		rates:         make(map[Table]map[string]float64, len(Tables)),
		standardAreas: make(map[string]float64),
		kits:          make(map[string][]KitItem),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for table, rates := range c.rates {
		for key, v := range rates {
			if v < 0 {
				return fmt.Errorf("%w: %s.%s has negative rate %v", ErrInvalidCatalog, table, key, v)
			}
		}
	}
	for sport, area := range c.standardAreas {
		if area < 0 {
			return fmt.Errorf("%w: courtSizes.%s has negative area %v", ErrInvalidCatalog, sport, area)
		}
	}
	for sport, items := range c.kits {
		for _, it := range items {
			if it.ID == "" || it.Quantity < 0 {
				return fmt.Errorf("%w: kit %s has a malformed item", ErrInvalidCatalog, sport)
			}
		}
	}
	return nil
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// Category returns the category the catalog was loaded from.
func (c *Catalog) Category() string { return c.category }

// Rate returns the rate for key in table, or 0 when the key is unknown.
func (c *Catalog) Rate(table Table, key string) float64 {
	return c.rates[table][key]
}

// LookupRate returns the rate for key in table and whether the table has it.
func (c *Catalog) LookupRate(table Table, key string) (float64, bool) {
	r, ok := c.rates[table][key]
	return r, ok
}

// StandardArea returns the standard court area for a sport and whether one is configured.
func (c *Catalog) StandardArea(sport string) (float64, bool) {
	a, ok := c.standardAreas[sport]
	return a, ok
}

// Rates returns a copy of a rate table.
func (c *Catalog) Rates(table Table) map[string]float64 {
	out := make(map[string]float64, len(c.rates[table]))
	for k, v := range c.rates[table] {
		out[k] = v
	}
	return out
}

// StandardAreas returns a copy of the court size table.
func (c *Catalog) StandardAreas() map[string]float64 {
	out := make(map[string]float64, len(c.standardAreas))
	for k, v := range c.standardAreas {
		out[k] = v
	}
	return out
}

// Sports returns the sports list.
func (c *Catalog) Sports() []Sport {
	return append([]Sport(nil), c.sports...)
}

// Kit returns the default equipment kit of a sport. Unknown sports get an empty kit.
func (c *Catalog) Kit(sport string) []KitItem {
	return append([]KitItem{}, c.kits[sport]...)
}

// Dump is a serializable copy of every table in the catalog.
type Dump struct {
	Category           string                        `json:"category"`
	Version            string                        `json:"version"`
	Base               map[string]float64            `json:"base"`
	Flooring           map[string]float64            `json:"flooring"`
	CourtSizes         map[string]map[string]float64 `json:"courtSizes"`
	Equipment          map[string]float64            `json:"equipment"`
	AdditionalFeatures map[string]float64            `json:"additionalFeatures"`
	Lighting           map[string]float64            `json:"lighting"`
	Roof               map[string]float64            `json:"roof"`
}

// Dump copies the catalog tables. Court sizes use the same nested shape as
// the catalog document.
func (c *Catalog) Dump() Dump {
	sizes := make(map[string]map[string]float64, len(c.standardAreas))
	for sport, area := range c.standardAreas {
		sizes[sport] = map[string]float64{"standard": area}
	}
	return Dump{
		Category:           c.category,
		Version:            c.version,
		Base:               c.Rates(TableBase),
		Flooring:           c.Rates(TableFlooring),
		CourtSizes:         sizes,
		Equipment:          c.Rates(TableEquipment),
		AdditionalFeatures: c.Rates(TableAdditionalFeatures),
		Lighting:           c.Rates(TableLighting),
		Roof:               c.Rates(TableRoof),
	}
}
