package sales

// Synthetic monthly revenue per category:
// revenue = linear trend + shared seasonal sine + per-category Gaussian noise.

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Row is one (month, category) observation.
type Row struct {
	Month    time.Time `json:"month"`
	Revenue  float64   `json:"revenue"`
	Category string    `json:"category"`
}

// Table holds rows category by category, months ascending within a category.
type Table struct {
	Rows []Row `json:"rows"`
}

// Series is one category's revenue line.
type Series struct {
	Category string
	Months   []time.Time
	Revenue  []float64
}

type Params struct {
	Seed              uint32
	Start             time.Time
	Periods           int
	Categories        []string
	BaseStart         float64
	BaseEnd           float64
	SeasonalAmplitude float64
	NoiseStd          float64
}

func DefaultParams() Params {
	return Params{
		Seed:              42,
		Start:             time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Periods:           12,
		Categories:        []string{"Electronics", "Clothing", "Groceries"},
		BaseStart:         20000,
		BaseEnd:           35000,
		SeasonalAmplitude: 3000,
		NoiseStd:          1500,
	}
}

func (p Params) validate() error {
	if p.Periods < 1 {
		return fmt.Errorf("periods must be positive, got %d", p.Periods)
	}
	if len(p.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	seen := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		if strings.TrimSpace(c) == "" {
			return errors.New("category labels must not be empty")
		}
		if seen[c] {
			return fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
	if p.NoiseStd < 0 || math.IsNaN(p.NoiseStd) {
		return fmt.Errorf("noise std must be non-negative, got %v", p.NoiseStd)
	}
	return nil
}

// Generate builds the table. The same Params always give the same rows.
func Generate(p Params) (Table, error) {
	if err := p.validate(); err != nil {
		return Table{}, fmt.Errorf("invalid generator params: %w", err)
	}

	months := MonthEnds(p.Start, p.Periods)
	trend := Trend(p)
	rng := newNormalSource(p.Seed)

	rows := make([]Row, 0, len(p.Categories)*p.Periods)
	for _, cat := range p.Categories {
		noise := rng.Normal(0, p.NoiseStd, p.Periods)
		for i, m := range months {
			rows = append(rows, Row{
				Month:    m,
				Revenue:  trend[i] + noise[i],
				Category: cat,
			})
		}
	}
	return Table{Rows: rows}, nil
}

// Trend returns the noiseless part of the revenue for each month.
func Trend(p Params) []float64 {
	base := linspace(p.BaseStart, p.BaseEnd, p.Periods)
	seasonal := Seasonality(p.SeasonalAmplitude, p.Periods)
	floats.Add(base, seasonal)
	return base
}

// Seasonality is amplitude*sin over one full cycle spread across n points,
// both ends included.
func Seasonality(amplitude float64, n int) []float64 {
	out := linspace(0, 2*math.Pi, n)
	for i, x := range out {
		out[i] = amplitude * math.Sin(x)
	}
	return out
}

// MonthEnds returns n consecutive month-end dates, the first being the end of
// start's month.
func MonthEnds(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, i+1, -1)
	}
	return out
}

func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi
	return out
}

func (t Table) Len() int { return len(t.Rows) }

// Categories lists categories in first-appearance order.
func (t Table) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

// Series groups the table by category.
func (t Table) Series() []Series {
	idx := make(map[string]int)
	var out []Series
	for _, r := range t.Rows {
		i, ok := idx[r.Category]
		if !ok {
			i = len(out)
			idx[r.Category] = i
			out = append(out, Series{Category: r.Category})
		}
		out[i].Months = append(out[i].Months, r.Month)
		out[i].Revenue = append(out[i].Revenue, r.Revenue)
	}
	return out
}
