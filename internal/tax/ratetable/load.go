package ratetable

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var embedded embed.FS

// DefaultYear is the tax year served when neither configuration nor the
// caller selects one.
const DefaultYear = 2026

type fileBand struct {
	Lower int64   `yaml:"lower"`
	Upper *int64  `yaml:"upper"`
	Rate  float64 `yaml:"rate"`
	Label string  `yaml:"label"`
}

type fileTable struct {
	Year        int    `yaml:"year"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Individual  struct {
		ExemptionThreshold int64      `yaml:"exemption_threshold"`
		Bands              []fileBand `yaml:"bands"`
		Reliefs            struct {
			RentRate float64 `yaml:"rent_rate"`
			RentCap  int64   `yaml:"rent_cap"`
		} `yaml:"reliefs"`
	} `yaml:"individual"`
	Business struct {
		CITRate             float64 `yaml:"cit_rate"`
		DevelopmentLevyRate float64 `yaml:"development_levy_rate"`
		CGTCompanyRate      float64 `yaml:"cgt_company_rate"`
		TurnoverThreshold   int64   `yaml:"turnover_threshold"`
		AssetsThreshold     int64   `yaml:"assets_threshold"`
	} `yaml:"business"`
}

// Parse decodes a single YAML rate table and validates it.
// Unknown keys are rejected so typos in a new year's file fail loudly.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw fileTable
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse rate table: %w", err)
	}

	t := &Table{
		Year:                         raw.Year,
		Version:                      raw.Version,
		Description:                  raw.Description,
		IndividualExemptionThreshold: decimal.NewFromInt(raw.Individual.ExemptionThreshold),
		Reliefs: Reliefs{
			RentRate: decimal.NewFromFloat(raw.Individual.Reliefs.RentRate),
			RentCap:  decimal.NewFromInt(raw.Individual.Reliefs.RentCap),
		},
		Business: Business{
			CITRate:             decimal.NewFromFloat(raw.Business.CITRate),
			DevelopmentLevyRate: decimal.NewFromFloat(raw.Business.DevelopmentLevyRate),
			CGTCompanyRate:      decimal.NewFromFloat(raw.Business.CGTCompanyRate),
			TurnoverThreshold:   decimal.NewFromInt(raw.Business.TurnoverThreshold),
			AssetsThreshold:     decimal.NewFromInt(raw.Business.AssetsThreshold),
		},
	}
	t.Bands = make([]Band, 0, len(raw.Individual.Bands))
	for _, b := range raw.Individual.Bands {
		band := Band{
			Lower: decimal.NewFromInt(b.Lower),
			Rate:  decimal.NewFromFloat(b.Rate),
			Label: b.Label,
		}
		if b.Upper != nil {
			upper := decimal.NewFromInt(*b.Upper)
			band.Upper = &upper
		}
		t.Bands = append(t.Bands, band)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads one rate table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table %s: %w", path, err)
	}
	return Parse(data)
}

// LoadEmbedded parses every table compiled into the binary.
func LoadEmbedded() ([]*Table, error) {
	entries, err := fs.Glob(embedded, "tables/*.yaml")
	if err != nil {
		return nil, err
	}
	tables := make([]*Table, 0, len(entries))
	for _, name := range entries {
		data, err := embedded.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded rate table %s: %w", name, err)
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Load builds the registry from the embedded tables, then overlays any tables
// found at overridePath (a single file or a directory of *.yaml files). A file
// for a year that is already embedded replaces the embedded table.
func Load(defaultYear int, overridePath string) (*Registry, error) {
	tables, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	byYear := make(map[int]*Table, len(tables))
	for _, t := range tables {
		byYear[t.Year] = t
	}

	if overridePath != "" {
		overrides, err := loadPath(overridePath)
		if err != nil {
			return nil, err
		}
		for _, t := range overrides {
			byYear[t.Year] = t
		}
	}

	if defaultYear == 0 {
		defaultYear = DefaultYear
	}
	all := make([]*Table, 0, len(byYear))
	for _, t := range byYear {
		all = append(all, t)
	}
	return NewRegistry(defaultYear, all...)
}

func loadPath(path string) ([]*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat rate tables %s: %w", path, err)
	}
	if !info.IsDir() {
		t, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []*Table{t}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.yaml"))
	if err != nil {
		return nil, err
	}
	tables := make([]*Table, 0, len(files))
	for _, f := range files {
		t, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}
