package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
)

// Header returns the column titles shared by every export format.
func Header() []string {
	h := []string{"Week ID", "Week", "Month"}
	for _, f := range metrics.FieldLabels {
		h = append(h, f+" Target", f+" Actual")
	}
	return h
}

// values returns target/actual pairs in Header order.
func values(r report.WeekRow) []float64 {
	t, a := r.Target.Values(), r.Actual.Values()
	out := make([]float64, 0, 2*len(t))
	for i := range t {
		out = append(out, t[i], a[i])
	}
	return out
}

func ToCSV(rows []report.WeekRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Header()); err != nil {
		return err
	}

	for _, r := range rows {
		rec := []string{r.Week.WeekID, r.Week.WeekLabel, r.Week.MonthLabel}
		for _, v := range values(r) {
			rec = append(rec, formatAmount(v))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
