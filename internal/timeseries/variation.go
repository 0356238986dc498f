package timeseries

import (
	"math"
	"time"
)

// ChangeMode selects how PeriodChange compares an observation with its
// lagged counterpart.
type ChangeMode int

const (
	// ChangePercent computes (current/previous - 1).
	ChangePercent ChangeMode = iota
	// ChangeDiff computes current - previous.
	ChangeDiff
)

// PeriodChange writes the lagged change of the series values into the named
// metric column. The first lag points get no value, and percent changes
// against a zero base are skipped. scale multiplies the result, e.g. 100
// for percentage points.
func PeriodChange(s *Series, metric string, lag int, mode ChangeMode, scale float64) {
	if lag <= 0 {
		return
	}
	for i := lag; i < len(s.Points); i++ {
		prev := s.Points[i-lag].Value
		cur := s.Points[i].Value
		switch mode {
		case ChangePercent:
			if prev == 0 {
				continue
			}
			s.Points[i].SetMetric(metric, (cur/prev-1)*scale)
		case ChangeDiff:
			s.Points[i].SetMetric(metric, (cur-prev)*scale)
		}
	}
}

// MovingAverage writes the trailing mean over window observations into the
// named metric column. Points before a full window get no value.
func MovingAverage(s *Series, metric string, window int) {
	if window <= 0 {
		return
	}
	for i := window - 1; i < len(s.Points); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += s.Points[j].Value
		}
		s.Points[i].SetMetric(metric, sum/float64(window))
	}
}

// YearToDate writes the percentage change against the first observation of
// each calendar year, resetting at every year boundary. The first
// observation of a year therefore reads 0. A zero base leaves the cell
// null rather than dividing by it.
func YearToDate(s *Series, metric string) {
	year := -1
	var first float64
	for i := range s.Points {
		if s.Points[i].Date.Year() != year {
			year = s.Points[i].Date.Year()
			first = s.Points[i].Value
		}
		if first == 0 {
			continue
		}
		s.Points[i].SetMetric(metric, (s.Points[i].Value/first-1)*100)
	}
}

// CumulativeSum writes the running sum of the values into the named metric
// column.
func CumulativeSum(s *Series, metric string) {
	var sum float64
	for i := range s.Points {
		sum += s.Points[i].Value
		s.Points[i].SetMetric(metric, sum)
	}
}

// CumulativeSumBy writes a running sum that restarts whenever the bucket
// key of the observation date changes, e.g. per calendar year.
func CumulativeSumBy(s *Series, metric string, bucket func(time.Time) string) {
	key := ""
	var sum float64
	for i := range s.Points {
		if k := bucket(s.Points[i].Date); k != key {
			key = k
			sum = 0
		}
		sum += s.Points[i].Value
		s.Points[i].SetMetric(metric, sum)
	}
}

// RollingSum writes the trailing sum over window observations into the
// named metric column. Points before a full window get no value.
func RollingSum(s *Series, metric string, window int) {
	if window <= 0 {
		return
	}
	for i := window - 1; i < len(s.Points); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += s.Points[j].Value
		}
		s.Points[i].SetMetric(metric, sum)
	}
}

// Volatility writes the trailing sample standard deviation over window
// observations. A window holding a single observation yields 0.
func Volatility(s *Series, metric string, window int) {
	if window <= 0 {
		return
	}
	for i := range s.Points {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		s.Points[i].SetMetric(metric, sampleStdDev(s.Points[start:i+1]))
	}
}

func sampleStdDev(points []Point) float64 {
	n := len(points)
	if n <= 1 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	mean := sum / float64(n)
	var ss float64
	for _, p := range points {
		d := p.Value - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// ResampleMonthly collapses a higher-frequency series to one observation
// per calendar month, valued at the mean of the month and dated at the
// month's last observation.
func ResampleMonthly(s *Series) *Series {
	out := &Series{Meta: s.Meta}
	out.Meta.Frequency = FrequencyMonthly

	var (
		key   string
		sum   float64
		count int
		last  Point
	)
	flush := func() {
		if count == 0 {
			return
		}
		out.Points = append(out.Points, Point{Date: last.Date, Value: sum / float64(count)})
	}
	for _, p := range s.Points {
		k := MonthKey(p.Date)
		if k != key {
			flush()
			key, sum, count = k, 0, 0
		}
		sum += p.Value
		count++
		last = p
	}
	flush()
	return out
}

// OHLCMonthly collapses a daily series to one observation per calendar
// month carrying open, high, low, close, avg and volatility metric
// columns. The point value and date follow the month's closing
// observation; a single-observation month has volatility 0.
func OHLCMonthly(s *Series) *Series {
	out := &Series{Meta: s.Meta}
	out.Meta.Frequency = FrequencyMonthly

	var (
		key    string
		bucket []Point
		last   Point
	)
	flush := func() {
		if len(bucket) == 0 {
			return
		}
		open, high, low := bucket[0].Value, bucket[0].Value, bucket[0].Value
		var sum float64
		for _, b := range bucket {
			if b.Value > high {
				high = b.Value
			}
			if b.Value < low {
				low = b.Value
			}
			sum += b.Value
		}
		closing := bucket[len(bucket)-1].Value

		p := Point{Date: last.Date, Value: closing}
		p.SetMetric("open", open)
		p.SetMetric("high", high)
		p.SetMetric("low", low)
		p.SetMetric("close", closing)
		p.SetMetric("avg", sum/float64(len(bucket)))
		p.SetMetric("volatility", sampleStdDev(bucket))
		out.Points = append(out.Points, p)
	}
	for _, p := range s.Points {
		k := MonthKey(p.Date)
		if k != key {
			flush()
			key = k
			bucket = bucket[:0]
		}
		bucket = append(bucket, p)
		last = p
	}
	flush()
	return out
}
