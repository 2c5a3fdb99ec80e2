// Package catalog holds the fixed instrument universe.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wonny/quantedge/internal/contracts"
)

//go:embed instruments.yaml
var embeddedInstruments []byte

// AllSectors is the pseudo-sector meaning "no sector filter"
const AllSectors = "All"

type file struct {
	Instruments []contracts.Instrument `yaml:"instruments" validate:"required,min=1,dive"`
}

// Catalog is the immutable instrument universe
// ⭐ SSOT: 종목 목록은 여기서만 관리
type Catalog struct {
	instruments []contracts.Instrument
	bySymbol    map[string]int
	sectors     []string
}

// Default loads the embedded catalog
func Default() (*Catalog, error) {
	return Parse(embeddedInstruments)
}

// Load reads a catalog file, falling back to the embedded one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	return New(f.Instruments)
}

// New builds a catalog from instruments, preserving order.
// Duplicate symbols are rejected, ignoring case.
func New(instruments []contracts.Instrument) (*Catalog, error) {
	c := &Catalog{
		instruments: make([]contracts.Instrument, len(instruments)),
		bySymbol:    make(map[string]int, len(instruments)),
	}
	copy(c.instruments, instruments)

	seen := make(map[string]bool)
	for i, inst := range c.instruments {
		key := symbolKey(inst.Symbol)
		if _, dup := c.bySymbol[key]; dup {
			return nil, fmt.Errorf("duplicate symbol %q: %w", inst.Symbol, contracts.ErrInvalidArgument)
		}
		c.bySymbol[key] = i

		// 섹터는 첫 등장 순서 유지
		if !seen[inst.Sector] {
			seen[inst.Sector] = true
			c.sectors = append(c.sectors, inst.Sector)
		}
	}

	return c, nil
}

// Len returns the number of instruments
func (c *Catalog) Len() int {
	return len(c.instruments)
}

// All returns a copy of every instrument in catalog order
func (c *Catalog) All() []contracts.Instrument {
	out := make([]contracts.Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

// Symbols returns all symbols in catalog order
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.instruments))
	for i, inst := range c.instruments {
		out[i] = inst.Symbol
	}
	return out
}

// Get looks up an instrument by symbol, ignoring case and surrounding space
func (c *Catalog) Get(symbol string) (contracts.Instrument, bool) {
	i, ok := c.bySymbol[symbolKey(symbol)]
	if !ok {
		return contracts.Instrument{}, false
	}
	return c.instruments[i], true
}

func symbolKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Sectors returns distinct sectors in first-seen order, prefixed with AllSectors
func (c *Catalog) Sectors() []string {
	return append([]string{AllSectors}, c.sectors...)
}

// Filter matches query case-insensitively against symbol, name and sector,
// then restricts to sector unless it is empty or AllSectors.
func (c *Catalog) Filter(query, sector string) []contracts.Instrument {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]contracts.Instrument, 0, len(c.instruments))

	for _, inst := range c.instruments {
		if sector != "" && sector != AllSectors && inst.Sector != sector {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(inst.Symbol), q) &&
			!strings.Contains(strings.ToLower(inst.Name), q) &&
			!strings.Contains(strings.ToLower(inst.Sector), q) {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// Indices returns index instruments sorted by symbol
func (c *Catalog) Indices() []contracts.Instrument {
	var out []contracts.Instrument
	for _, inst := range c.instruments {
		if inst.IsIndex {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
