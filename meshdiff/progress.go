package meshdiff

// A ProgressFunc is called synchronously by long running collaborators with
// the completed fraction in [0, 1]. Returning false asks the caller to stop
// early and fail.
type ProgressFunc func(fraction float64) bool

// DecileProgress turns a stream of fractions into one report per 10%.
//
// Create one per operation; it remembers the last reported decile so
// repeated fractions in the same decile are reported once.
type DecileProgress struct {
	last   int
	report func(percent int)
}

func NewDecileProgress(report func(percent int)) *DecileProgress {
	return &DecileProgress{last: -1, report: report}
}

// Update reports fraction if it starts a new decile. It never cancels.
func (d *DecileProgress) Update(fraction float64) bool {
	decile := int(10 * clamp(fraction, 0, 1))
	percent := (decile + 1) * 10
	if percent > 100 {
		percent = 100
	}
	if percent != d.last {
		d.last = percent
		if d.report != nil {
			d.report(percent)
		}
	}
	return true
}

// Func returns d.Update as a ProgressFunc.
func (d *DecileProgress) Func() ProgressFunc {
	return d.Update
}
