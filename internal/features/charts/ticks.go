package charts

import (
	"math"
	"sort"
	"strconv"
	"time"
)

const axisMargin = 0.05

// padRange widens [lo, hi] by frac of its span on both sides. A zero span is
// opened up around the value so the axis still has a scale.
func padRange(lo, hi, frac float64) (float64, float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	if span == 0 {
		span = math.Abs(lo)
		if span == 0 {
			span = 1
		}
		return lo - span*frac*2, hi + span*frac*2
	}
	return lo - span*frac, hi + span*frac
}

// niceStep rounds raw up to 1, 2, 2.5 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	mag := math.Pow(10, exp)
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag*(1+1e-9) {
			return m * mag
		}
	}
	return 10 * mag
}

// niceTicks returns at most maxTicks round values inside [lo, hi].
func niceTicks(lo, hi float64, maxTicks int) (ticks []float64, step float64) {
	if maxTicks < 2 {
		maxTicks = 2
	}
	step = niceStep((hi - lo) / float64(maxTicks-1))
	for {
		first := math.Ceil(lo/step-1e-9) * step
		ticks = ticks[:0]
		for v := first; v <= hi+step*1e-9; v += step {
			ticks = append(ticks, v)
		}
		if len(ticks) <= maxTicks {
			return ticks, step
		}
		step = niceStep(step * 1.01)
	}
}

// formatTick prints v with as many decimals as step needs.
func formatTick(v, step float64) string {
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
		if step*math.Pow(10, float64(decimals)) != math.Round(step*math.Pow(10, float64(decimals))) {
			decimals++
		}
	}
	if math.Abs(v) < step*1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

const monthLayout = "2006-01"

func timeValue(t time.Time) float64 {
	return float64(t.Unix())
}

// monthTicks collects the distinct months of all series in ascending order.
func monthTicks(months [][]time.Time) []time.Time {
	seen := make(map[int64]bool)
	var out []time.Time
	for _, ms := range months {
		for _, m := range ms {
			if !seen[m.Unix()] {
				seen[m.Unix()] = true
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// thinEvery returns the smallest stride that keeps n labels, spaced across
// width pixels, at least minSpacing apart.
func thinEvery(n int, width, minSpacing float64) int {
	if n <= 1 || minSpacing <= 0 {
		return 1
	}
	spacing := width / float64(n-1)
	stride := 1
	for spacing*float64(stride) < minSpacing && stride < n {
		stride++
	}
	return stride
}

// rotatedBox is the axis-aligned size of a w×h box rotated by deg degrees.
func rotatedBox(w, h, deg float64) (float64, float64) {
	th := deg * math.Pi / 180
	c, s := math.Abs(math.Cos(th)), math.Abs(math.Sin(th))
	return w*c + h*s, w*s + h*c
}
