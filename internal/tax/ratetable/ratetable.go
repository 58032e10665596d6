// Package ratetable holds the versioned statutory schedules (bands, rates,
// thresholds and relief caps) for each supported tax year.
//
// Tables are loaded once at process start and must be treated as read-only
// afterwards; every calculation selects a table explicitly by year.
package ratetable

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	dErrors "taxcalc/pkg/domain-errors"
)

// Band is one contiguous income range taxed at a single rate.
// Upper is nil for the terminal unbounded band.
type Band struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
	Label string
}

// Unbounded reports whether the band extends to infinity.
func (b Band) Unbounded() bool {
	return b.Upper == nil
}

// Width returns the number of naira the band can absorb. Only meaningful for
// bounded bands.
func (b Band) Width() decimal.Decimal {
	if b.Upper == nil {
		return decimal.Zero
	}
	return b.Upper.Sub(b.Lower).Add(decimal.NewFromInt(1))
}

// Reliefs configures the capped reliefs. Pension, life insurance and housing
// fund contributions are allowed at face value and need no configuration.
type Reliefs struct {
	RentRate decimal.Decimal
	RentCap  decimal.Decimal
}

// Business holds the flat corporate rates and the small-company exemption
// thresholds.
type Business struct {
	CITRate             decimal.Decimal
	DevelopmentLevyRate decimal.Decimal
	CGTCompanyRate      decimal.Decimal
	TurnoverThreshold   decimal.Decimal
	AssetsThreshold     decimal.Decimal
}

// Table is the complete schedule for a single tax year.
type Table struct {
	Year                         int
	Version                      string
	Description                  string
	Bands                        []Band
	IndividualExemptionThreshold decimal.Decimal
	Reliefs                      Reliefs
	Business                     Business
}

// Validate checks the structural invariants of the schedule: bands start at
// zero, are contiguous and non-overlapping, end with exactly one unbounded
// band, and every rate lies in [0, 1].
func (t *Table) Validate() error {
	if t.Year <= 0 {
		return fmt.Errorf("rate table: invalid year %d", t.Year)
	}
	if len(t.Bands) == 0 {
		return fmt.Errorf("rate table %d: no bands", t.Year)
	}
	if !t.Bands[0].Lower.IsZero() {
		return fmt.Errorf("rate table %d: first band must start at 0, got %s", t.Year, t.Bands[0].Lower)
	}
	one := decimal.NewFromInt(1)
	for i, b := range t.Bands {
		if err := validRate(b.Rate); err != nil {
			return fmt.Errorf("rate table %d band %d (%s): %w", t.Year, i, b.Label, err)
		}
		last := i == len(t.Bands)-1
		if b.Unbounded() {
			if !last {
				return fmt.Errorf("rate table %d band %d (%s): only the final band may be unbounded", t.Year, i, b.Label)
			}
			continue
		}
		if last {
			return fmt.Errorf("rate table %d: final band (%s) must be unbounded", t.Year, b.Label)
		}
		if b.Upper.LessThan(b.Lower) {
			return fmt.Errorf("rate table %d band %d (%s): upper %s below lower %s", t.Year, i, b.Label, b.Upper, b.Lower)
		}
		next := t.Bands[i+1]
		if !next.Lower.Equal(b.Upper.Add(one)) {
			return fmt.Errorf("rate table %d: band %d starts at %s, want %s", t.Year, i+1, next.Lower, b.Upper.Add(one))
		}
	}

	for name, r := range map[string]decimal.Decimal{
		"rent relief rate":      t.Reliefs.RentRate,
		"cit rate":              t.Business.CITRate,
		"development levy rate": t.Business.DevelopmentLevyRate,
		"cgt company rate":      t.Business.CGTCompanyRate,
	} {
		if err := validRate(r); err != nil {
			return fmt.Errorf("rate table %d %s: %w", t.Year, name, err)
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"individual exemption threshold": t.IndividualExemptionThreshold,
		"rent relief cap":                t.Reliefs.RentCap,
		"turnover threshold":             t.Business.TurnoverThreshold,
		"assets threshold":               t.Business.AssetsThreshold,
	} {
		if v.IsNegative() {
			return fmt.Errorf("rate table %d: %s cannot be negative", t.Year, name)
		}
	}
	return nil
}

func validRate(r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate %s outside [0, 1]", r)
	}
	return nil
}

// Registry indexes validated tables by year.
type Registry struct {
	tables      map[int]*Table
	defaultYear int
}

// NewRegistry validates every table and indexes it by year. defaultYear must
// name one of the supplied tables; it is used when callers pass year 0.
func NewRegistry(defaultYear int, tables ...*Table) (*Registry, error) {
	r := &Registry{tables: make(map[int]*Table, len(tables)), defaultYear: defaultYear}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.tables[t.Year]; exists {
			return nil, fmt.Errorf("rate table for %d registered twice", t.Year)
		}
		r.tables[t.Year] = t
	}
	if _, ok := r.tables[defaultYear]; !ok {
		return nil, fmt.Errorf("default tax year %d has no rate table", defaultYear)
	}
	return r, nil
}

// Get returns the table for year, or the default table when year is 0.
func (r *Registry) Get(year int) (*Table, error) {
	if year == 0 {
		year = r.defaultYear
	}
	t, ok := r.tables[year]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no rate table for tax year %d", year))
	}
	return t, nil
}

// Default returns the table for the default year.
func (r *Registry) Default() *Table {
	return r.tables[r.defaultYear]
}

// DefaultYear returns the year used when callers do not pick one.
func (r *Registry) DefaultYear() int {
	return r.defaultYear
}

// Years lists the supported tax years in ascending order.
func (r *Registry) Years() []int {
	years := make([]int, 0, len(r.tables))
	for y := range r.tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
