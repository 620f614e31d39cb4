package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/greenops"
	"github.com/pegada/calcpc/internal/logging"
)

// Row is one compared indicator.
type Row struct {
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`

	Company float64 `json:"company"`
	Sector  float64 `json:"sector"`

	// Delta is Company - Sector.
	Delta float64 `json:"delta"`

	// Percent is Delta relative to the sector value; HasPercent is false
	// when the sector value is zero.
	Percent    float64 `json:"percent"`
	HasPercent bool    `json:"has_percent"`
}

// Comparison is a built report.
type Comparison struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Owner       int64     `json:"owner"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`

	Company greenops.EquivalencyOutput `json:"company_equivalency"`
	Sector  greenops.EquivalencyOutput `json:"sector_equivalency"`
}

// Build reads the current values of every row for owner. The sheets are
// read as they are; callers recalculate first when they need fresh values.
func Build(ctx context.Context, e *engine.Engine, def Definition, owner int64) (*Comparison, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	companyNames := make([]string, len(def.Rows))
	sectorNames := make([]string, len(def.Rows))
	for i, r := range def.Rows {
		companyNames[i] = r.Company
		sectorNames[i] = r.Sector
	}

	company, err := values(ctx, e, def.CompanySheet, owner, companyNames)
	if err != nil {
		return nil, err
	}
	sector, err := values(ctx, e, def.SectorSheet, owner, sectorNames)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Name:        def.Name,
		Title:       def.Title,
		Owner:       owner,
		GeneratedAt: time.Now(),
		Rows:        make([]Row, len(def.Rows)),
		Company:     greenops.EquivalencyOutput{IsEmpty: true},
		Sector:      greenops.EquivalencyOutput{IsEmpty: true},
	}
	for i, spec := range def.Rows {
		row := Row{
			Label:   spec.Label,
			Unit:    spec.Unit,
			Company: company[i],
			Sector:  sector[i],
			Delta:   company[i] - sector[i],
		}
		if sector[i] != 0 {
			row.Percent = row.Delta / math.Abs(sector[i]) * 100
			row.HasPercent = true
		}
		cmp.Rows[i] = row

		if def.CarbonRow != "" && spec.Label == def.CarbonRow {
			cmp.Company = equivalency(ctx, row.Company)
			cmp.Sector = equivalency(ctx, row.Sector)
		}
	}
	return cmp, nil
}

func values(ctx context.Context, e *engine.Engine, sheetName string, owner int64, names []string) ([]float64, error) {
	sh, err := e.Sheet(sheetName)
	if err != nil {
		return nil, err
	}
	vals, err := sh.Values(ctx, owner, names...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheetName, err)
	}
	return vals, nil
}

func equivalency(ctx context.Context, kg float64) greenops.EquivalencyOutput {
	out, err := greenops.CalculateKg(kg)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "report").
			Err(err).
			Float64("kg_co2e", kg).
			Msg("equivalency calculation failed")
		return greenops.EquivalencyOutput{IsEmpty: true}
	}
	return out
}
