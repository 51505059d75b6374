// Package refdata holds the static reference tables the research pipeline
// falls back on: a name→ticker map for well-known issuers and a
// sector→competitor table. Both ship embedded but can be replaced from a
// YAML file at startup.
package refdata

import (
	"embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed tickers.yaml competitors.yaml
var embedded embed.FS

// Tables bundles the fallback reference data.
type Tables struct {
	tickers map[string]string
	sectors map[string][]string
}

// Load parses the embedded reference tables.
func Load() (*Tables, error) {
	tickersRaw, err := embedded.ReadFile("tickers.yaml")
	if err != nil {
		return nil, eris.Wrap(err, "refdata: read embedded tickers")
	}
	sectorsRaw, err := embedded.ReadFile("competitors.yaml")
	if err != nil {
		return nil, eris.Wrap(err, "refdata: read embedded competitors")
	}
	return parse(tickersRaw, sectorsRaw)
}

// LoadFiles reads replacement tables from YAML files on disk. Either path may
// be empty, in which case the embedded table is kept for that side.
func LoadFiles(tickersPath, sectorsPath string) (*Tables, error) {
	t, err := Load()
	if err != nil {
		return nil, err
	}
	if tickersPath != "" {
		raw, err := os.ReadFile(tickersPath)
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: read %s", tickersPath)
		}
		tickers := map[string]string{}
		if err := yaml.Unmarshal(raw, &tickers); err != nil {
			return nil, eris.Wrapf(err, "refdata: parse %s", tickersPath)
		}
		t.tickers = lowerKeys(tickers)
	}
	if sectorsPath != "" {
		raw, err := os.ReadFile(sectorsPath)
		if err != nil {
			return nil, eris.Wrapf(err, "refdata: read %s", sectorsPath)
		}
		sectors := map[string][]string{}
		if err := yaml.Unmarshal(raw, &sectors); err != nil {
			return nil, eris.Wrapf(err, "refdata: parse %s", sectorsPath)
		}
		t.sectors = sectors
	}
	return t, nil
}

func parse(tickersRaw, sectorsRaw []byte) (*Tables, error) {
	tickers := map[string]string{}
	if err := yaml.Unmarshal(tickersRaw, &tickers); err != nil {
		return nil, eris.Wrap(err, "refdata: parse tickers")
	}
	sectors := map[string][]string{}
	if err := yaml.Unmarshal(sectorsRaw, &sectors); err != nil {
		return nil, eris.Wrap(err, "refdata: parse competitors")
	}
	return &Tables{tickers: lowerKeys(tickers), sectors: sectors}, nil
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// Ticker looks up a ticker for a company name, case-insensitively.
func (t *Tables) Ticker(name string) (string, bool) {
	sym, ok := t.tickers[strings.ToLower(strings.TrimSpace(name))]
	return sym, ok
}

// Competitors returns the representative competitor list for a sector.
func (t *Tables) Competitors(sector string) ([]string, bool) {
	names, ok := t.sectors[sector]
	return names, ok
}

// Sectors returns the number of sectors with competitor coverage.
func (t *Tables) Sectors() int {
	return len(t.sectors)
}
