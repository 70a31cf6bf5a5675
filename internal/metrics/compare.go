package metrics

// FunnelMetrics are conversion rates in percent.
type FunnelMetrics struct {
	AppointmentRate float64 `json:"appointmentRate"`
	ShowRate        float64 `json:"showRate"`
	CloseRate       float64 `json:"closeRate"`
	LeadToSaleRate  float64 `json:"leadToSaleRate"`
}

// CostMetrics are budget spent per funnel stage.
type CostMetrics struct {
	CostPerLead                float64 `json:"costPerLead"`
	CostPerAppointmentSet      float64 `json:"costPerAppointmentSet"`
	CostPerAppointmentComplete float64 `json:"costPerAppointmentComplete"`
	CostPerJobBooked           float64 `json:"costPerJobBooked"`
}

// Comparison is the target/actual breakdown of one period.
type Comparison struct {
	Target             Bundle        `json:"target"`
	Actual             Bundle        `json:"actual"`
	Variance           Bundle        `json:"variance"`
	PercentageAchieved Bundle        `json:"percentageAchieved"`
	FunnelMetrics      FunnelMetrics `json:"funnelMetrics"`
	CostMetrics        CostMetrics   `json:"costMetrics"`
}

// Funnel derives conversion rates from b. A zero denominator gives 0.
func Funnel(b Bundle) FunnelMetrics {
	return FunnelMetrics{
		AppointmentRate: SafeDiv(b.AppointmentsSet, b.Leads) * 100,
		ShowRate:        SafeDiv(b.AppointmentsComplete, b.AppointmentsSet) * 100,
		CloseRate:       SafeDiv(b.JobsBooked, b.AppointmentsComplete) * 100,
		LeadToSaleRate:  SafeDiv(b.JobsBooked, b.Leads) * 100,
	}
}

// Costs derives cost per stage from b's budget spent.
func Costs(b Bundle) CostMetrics {
	return CostMetrics{
		CostPerLead:                SafeDiv(b.MetaBudgetSpent, b.Leads),
		CostPerAppointmentSet:      SafeDiv(b.MetaBudgetSpent, b.AppointmentsSet),
		CostPerAppointmentComplete: SafeDiv(b.MetaBudgetSpent, b.AppointmentsComplete),
		CostPerJobBooked:           SafeDiv(b.MetaBudgetSpent, b.JobsBooked),
	}
}

// Compare builds the comparison of actual against target. Funnel and cost
// metrics describe the actual figures.
func Compare(target, actual Bundle) Comparison {
	return Comparison{
		Target:   target,
		Actual:   actual,
		Variance: actual.Sub(target),
		PercentageAchieved: Combine(actual, target, func(a, t float64) float64 {
			return SafeDiv(a, t) * 100
		}),
		FunnelMetrics: Funnel(actual),
		CostMetrics:   Costs(actual),
	}
}
