package metrics

import (
	"errors"
	"math"
)

// ErrNonFinite marks a Bundle holding an infinity or NaN.
var ErrNonFinite = errors.New("value is not a finite number")

// Bundle is the fixed set of funnel figures tracked for every period, used
// for targets and actuals alike.
type Bundle struct {
	Leads                float64 `json:"leads"`
	AppointmentsSet      float64 `json:"appointmentsSet"`
	AppointmentsComplete float64 `json:"appointmentsComplete"`
	JobsBooked           float64 `json:"jobsBooked"`
	SalesRevenue         float64 `json:"salesRevenue"`
	MetaBudgetSpent      float64 `json:"metaBudgetSpent"`
}

// FieldLabels names the Bundle fields in the order returned by Values.
var FieldLabels = [6]string{
	"Leads",
	"Appointments Set",
	"Appointments Complete",
	"Jobs Booked",
	"Sales Revenue",
	"Meta Budget Spent",
}

// FieldKeys are the JSON keys of the Bundle fields in Values order.
var FieldKeys = [6]string{
	"leads",
	"appointmentsSet",
	"appointmentsComplete",
	"jobsBooked",
	"salesRevenue",
	"metaBudgetSpent",
}

// FieldIndex returns the Values position of a JSON key.
func FieldIndex(key string) (int, bool) {
	for i, k := range FieldKeys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// IsMoneyField reports whether the field at i is a currency amount.
func IsMoneyField(i int) bool {
	return i == 4 || i == 5
}

// Values returns the fields in FieldLabels order.
func (b Bundle) Values() [6]float64 {
	return [6]float64{b.Leads, b.AppointmentsSet, b.AppointmentsComplete, b.JobsBooked, b.SalesRevenue, b.MetaBudgetSpent}
}

// FromValues is the inverse of Values.
func FromValues(v [6]float64) Bundle {
	return Bundle{
		Leads:                v[0],
		AppointmentsSet:      v[1],
		AppointmentsComplete: v[2],
		JobsBooked:           v[3],
		SalesRevenue:         v[4],
		MetaBudgetSpent:      v[5],
	}
}

func (b Bundle) IsZero() bool {
	return b == Bundle{}
}

// IsFinite reports whether no field is an infinity or NaN.
func (b Bundle) IsFinite() bool {
	for _, v := range b.Values() {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Combine applies fn field by field.
func Combine(a, b Bundle, fn func(x, y float64) float64) Bundle {
	return Bundle{
		Leads:                fn(a.Leads, b.Leads),
		AppointmentsSet:      fn(a.AppointmentsSet, b.AppointmentsSet),
		AppointmentsComplete: fn(a.AppointmentsComplete, b.AppointmentsComplete),
		JobsBooked:           fn(a.JobsBooked, b.JobsBooked),
		SalesRevenue:         fn(a.SalesRevenue, b.SalesRevenue),
		MetaBudgetSpent:      fn(a.MetaBudgetSpent, b.MetaBudgetSpent),
	}
}

func (b Bundle) Add(o Bundle) Bundle {
	return Combine(b, o, func(x, y float64) float64 { return x + y })
}

func (b Bundle) Sub(o Bundle) Bundle {
	return Combine(b, o, func(x, y float64) float64 { return x - y })
}

// Sum adds bundles in the order given.
func Sum(bundles ...Bundle) Bundle {
	var total Bundle
	for _, b := range bundles {
		total = total.Add(b)
	}
	return total
}

// SafeDiv returns n/d, or 0 when d is 0.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}
