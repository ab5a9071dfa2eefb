// Package airports resolves user-typed city names to IATA airport codes.
package airports

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Airport is one catalog entry with its IATA code and known aliases.
type Airport struct {
	Code    string   `yaml:"code"`
	City    string   `yaml:"city"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Airports []Airport `yaml:"airports"`
}

// Catalog maps city names, aliases and bare codes to airports.
type Catalog struct {
	byKey map[string]Airport
}

// Load reads a YAML airport catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read airport catalog %s: %w", path, err)
	}
	c, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse airport catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadFromBytes parses a YAML airport catalog from raw bytes.
func LoadFromBytes(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse airport catalog: %w", err)
	}
	if len(file.Airports) == 0 {
		return nil, fmt.Errorf("airport catalog: no airports defined")
	}

	c := &Catalog{byKey: make(map[string]Airport)}
	for _, a := range file.Airports {
		if a.Code == "" {
			return nil, fmt.Errorf("airport catalog: entry for %q missing code", a.City)
		}
		c.byKey[normalize(a.Code)] = a
		if a.City != "" {
			c.byKey[normalize(a.City)] = a
		}
		for _, alias := range a.Aliases {
			c.byKey[normalize(alias)] = a
		}
	}
	return c, nil
}

// Resolve maps a user-typed city name or code to an airport.
func (c *Catalog) Resolve(input string) (Airport, bool) {
	a, ok := c.byKey[normalize(input)]
	return a, ok
}

// Default returns a catalog with the main Brazilian airports, used when no
// catalog file is configured.
func Default() *Catalog {
	c, err := LoadFromBytes(defaultCatalog)
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return c
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(stripAccents(s)))
}

// stripAccents folds the accented letters that appear in Brazilian city names.
func stripAccents(s string) string {
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u",
		"ç", "c",
		"Á", "A", "À", "A", "Ã", "A", "Â", "A",
		"É", "E", "Ê", "E",
		"Í", "I",
		"Ó", "O", "Õ", "O", "Ô", "O",
		"Ú", "U",
		"Ç", "C",
	)
	return replacer.Replace(s)
}

var defaultCatalog = []byte(`airports:
  - code: GRU
    city: São Paulo
    aliases: [Guarulhos, Sao Paulo, SP]
  - code: CGH
    city: Congonhas
  - code: GIG
    city: Rio de Janeiro
    aliases: [Galeão, RJ, Rio]
  - code: SDU
    city: Santos Dumont
  - code: SSA
    city: Salvador
  - code: BSB
    city: Brasília
  - code: CNF
    city: Belo Horizonte
    aliases: [Confins, BH]
  - code: REC
    city: Recife
  - code: FOR
    city: Fortaleza
  - code: POA
    city: Porto Alegre
  - code: CWB
    city: Curitiba
  - code: FLN
    city: Florianópolis
  - code: MAO
    city: Manaus
  - code: BEL
    city: Belém
  - code: NAT
    city: Natal
  - code: MCZ
    city: Maceió
  - code: VIX
    city: Vitória
  - code: GYN
    city: Goiânia
`)
