package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/sadopc/revenuepro/internal/metrics"
)

// bundleForm holds the text inputs for one metrics.Bundle. Values are
// pointers so they survive the value copies Bubble Tea models go through.
type bundleForm struct {
	fields [6]*string
	notes  *string
}

func newBundleForm() bundleForm {
	var f bundleForm
	for i := range f.fields {
		v := ""
		f.fields[i] = &v
	}
	n := ""
	f.notes = &n
	return f
}

func (f bundleForm) fill(b metrics.Bundle, notes string) {
	for i, v := range b.Values() {
		*f.fields[i] = formatAmount(v)
	}
	*f.notes = notes
}

func (f bundleForm) bundle() (metrics.Bundle, error) {
	var v [6]float64
	for i, s := range f.fields {
		n, err := parseAmount(*s)
		if err != nil {
			return metrics.Bundle{}, err
		}
		v[i] = n
	}
	return metrics.FromValues(v), nil
}

// form builds a huh form titled title. withNotes adds a free-text notes field.
func (f bundleForm) form(title string, withNotes bool) *huh.Form {
	fields := make([]huh.Field, 0, 7)
	for i, label := range metrics.FieldLabels {
		fields = append(fields, huh.NewInput().
			Title(label).
			Value(f.fields[i]).
			Validate(validateAmount))
	}
	if withNotes {
		fields = append(fields, huh.NewInput().Title("Notes").Value(f.notes))
	}
	return huh.NewForm(
		huh.NewGroup(fields...).Title(title),
	).WithShowHelp(true).WithShowErrors(true)
}
