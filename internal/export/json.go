package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Year       int        `json:"year"`
	Count      int        `json:"count"`
	Weeks      []jsonWeek `json:"weeks"`
	Totals     jsonTotals `json:"totals"`
}

type jsonWeek struct {
	WeekID string          `json:"week_id"`
	Week   string          `json:"week"`
	Month  string          `json:"month"`
	Target *metrics.Bundle `json:"target,omitempty"`
	Actual *metrics.Bundle `json:"actual,omitempty"`
}

type jsonTotals struct {
	Target metrics.Bundle     `json:"target"`
	Actual metrics.Bundle     `json:"actual"`
	Result metrics.Comparison `json:"comparison"`
}

// ToJSON writes the year's weekly rows. Weeks without a target or actual omit
// that object rather than reporting zeros.
func ToJSON(year int, rows []report.WeekRow, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Year:       year,
		Count:      len(rows),
	}

	for _, r := range rows {
		wk := jsonWeek{
			WeekID: r.Week.WeekID,
			Week:   r.Week.WeekLabel,
			Month:  r.Week.MonthLabel,
		}
		if r.HasTarget {
			t := r.Target
			wk.Target = &t
		}
		if r.HasActual {
			a := r.Actual
			wk.Actual = &a
		}
		export.Weeks = append(export.Weeks, wk)
		export.Totals.Target = export.Totals.Target.Add(r.Target)
		export.Totals.Actual = export.Totals.Actual.Add(r.Actual)
	}
	export.Totals.Result = metrics.Compare(export.Totals.Target, export.Totals.Actual)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
