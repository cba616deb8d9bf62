package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
}

func TestEvaluateAt_Scenarios(t *testing.T) {
	now := day(2024, time.December, 6)

	tests := []struct {
		name    string
		date    string
		score   int
		band    Band
		basis   string
		metrics Metrics
	}{
		{"eight years", "2016-12-06", 95, BandVeryHigh, "Section 16H (Expungement)", Metrics{95, 85, 90, 70, 80}},
		{"fourteen years", "2010-11-15", 65, BandModerate, "Section 14 (Cancellation)", Metrics{65, 70, 60, 85, 75}},
		{"one year", "2023-11-01", 25, BandLow, "N/A", Metrics{25, 40, 20, 90, 50}},
		{"same day", "2024-12-06", 25, BandLow, "N/A", Metrics{25, 40, 20, 90, 50}},
		{"future", "2030-01-01", 25, BandLow, "N/A", Metrics{25, 40, 20, 90, 50}},
		{"single digit month and day", "2016-1-6", 95, BandVeryHigh, "Section 16H (Expungement)", Metrics{95, 85, 90, 70, 80}},
		{"surrounding whitespace", " 2016-12-06 ", 95, BandVeryHigh, "Section 16H (Expungement)", Metrics{95, 85, 90, 70, 80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := EvaluateAt(tt.date, now)
			require.NotNil(t, a)
			assert.Equal(t, tt.score, a.Score)
			assert.Equal(t, tt.band, a.Band)
			assert.Equal(t, tt.basis, a.LegalBasis)
			assert.Equal(t, tt.metrics, a.Metrics)
			assert.Equal(t, now, a.EvaluatedAt)
		})
	}
}

func TestEvaluateAt_Labels(t *testing.T) {
	now := day(2024, time.December, 6)

	zh := NewEvaluator(LocaleZH)
	assert.Equal(t, "✅ 极高 (TMA黄金期)", zh.EvaluateAt("2016-12-06", now).Label)
	assert.Equal(t, "⚠️ 中等 (常规路径)", zh.EvaluateAt("2010-11-15", now).Label)
	assert.Equal(t, "❌ 较低 (保护期内)", zh.EvaluateAt("2023-11-01", now).Label)
	assert.Equal(t, "数据异常", zh.EvaluateAt("bad", now).Label)

	en := NewEvaluator("en-US")
	assert.Equal(t, "Very high (statutory window)", en.EvaluateAt("2016-12-06", now).Label)
	assert.Equal(t, "Moderate (standard path)", en.EvaluateAt("2010-11-15", now).Label)
	assert.Equal(t, "Low (within protection period)", en.EvaluateAt("2023-11-01", now).Label)
	assert.Equal(t, "Data error", en.EvaluateAt("bad", now).Label)
}

func TestEvaluateAt_Unparsable(t *testing.T) {
	now := day(2024, time.December, 6)
	inputs := []string{"", "not-a-date", "2016/12/06", "2016-13-01", "2016-02-30", "16-12-06", "2016-12-06T00:00:00Z"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			a := EvaluateAt(in, now)
			require.NotNil(t, a)
			assert.Equal(t, 0, a.Score)
			assert.Equal(t, BandError, a.Band)
			assert.Equal(t, "数据异常", a.Label)
			assert.Equal(t, "N/A", a.LegalBasis)
			assert.Equal(t, Metrics{0, 0, 0, 0, 0}, a.Metrics)
			assert.Zero(t, a.Years)
		})
	}
}

func TestEvaluateAt_Boundaries(t *testing.T) {
	now := day(2024, time.June, 15)
	ago := func(days int) string {
		return now.AddDate(0, 0, -days).Format(DateLayout)
	}

	tests := []struct {
		name  string
		days  int
		score int
	}{
		// 1096 / 365.25 = 3.0007
		{"just past three years", 1096, 95},
		// 1095 / 365.25 = 2.9979
		{"just under three years", 1095, 25},
		// 3652 / 365.25 = 9.9986
		{"just under ten years", 3652, 95},
		// 3653 / 365.25 = 10.0014
		{"just past ten years", 3653, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := EvaluateAt(ago(tt.days), now)
			assert.Equal(t, tt.score, a.Score, "years: %f", a.Years)
		})
	}
}

func TestEvaluateAt_ExactYearsInclusive(t *testing.T) {
	// 2021-12-06 to 2024-12-06 spans 1096 days
	a := EvaluateAt("2021-12-06", day(2024, time.December, 6))
	assert.Equal(t, 95, a.Score)

	// 2013-12-06 to 2023-12-06 spans 3652 days
	a = EvaluateAt("2013-12-06", day(2023, time.December, 6))
	assert.Equal(t, 95, a.Score)

	p := &Policy{
		WindowStartYears: 3,
		WindowEndYears:   10,
		VeryHigh:         DefaultPolicy.VeryHigh,
		Moderate:         DefaultPolicy.Moderate,
		Low:              DefaultPolicy.Low,
		Error:            DefaultPolicy.Error,
	}
	e := &Evaluator{Policy: p}

	// 1461 days is exactly 4 * 365.25
	p.WindowStartYears = 4
	assert.Equal(t, 95, e.EvaluateAt("2020-12-06", day(2024, time.December, 6)).Score)

	p.WindowStartYears = 3
	p.WindowEndYears = 4
	assert.Equal(t, 95, e.EvaluateAt("2020-12-06", day(2024, time.December, 6)).Score)
}

func TestEvaluate_DependsOnNow(t *testing.T) {
	e := NewEvaluator(LocaleEN)

	e.Now = func() time.Time { return day(2023, time.January, 1) }
	early := e.Evaluate("2021-05-20")

	e.Now = func() time.Time { return day(2025, time.January, 1) }
	late := e.Evaluate("2021-05-20")

	assert.Equal(t, 25, early.Score)
	assert.Equal(t, 95, late.Score)
	assert.Greater(t, late.Years, early.Years)
}

func TestEvaluate_WallClock(t *testing.T) {
	a := Evaluate(time.Now().AddDate(-5, 0, 0).Format(DateLayout))
	assert.Equal(t, 95, a.Score)

	a = Evaluate("garbage")
	assert.Equal(t, BandError, a.Band)
}

func TestElapsedYears_IgnoresZone(t *testing.T) {
	utc := time.Date(2024, time.December, 6, 0, 30, 0, 0, time.UTC)
	east := time.Date(2024, time.December, 6, 0, 30, 0, 0, time.FixedZone("CST", 8*60*60))

	y1, ok := ElapsedYears("2016-12-06", utc)
	require.True(t, ok)
	y2, ok := ElapsedYears("2016-12-06", east)
	require.True(t, ok)

	assert.Equal(t, y1, y2)
	assert.InDelta(t, 8.0, y1, 0.0001)
}

func TestElapsedYears_FloorsPartialDays(t *testing.T) {
	now := time.Date(2024, time.December, 5, 23, 59, 0, 0, time.UTC)
	y, ok := ElapsedYears("2024-12-06", now)
	require.True(t, ok)
	assert.InDelta(t, -1/365.25, y, 0.000001)

	y, ok = ElapsedYears("2024-12-05", now)
	require.True(t, ok)
	assert.Zero(t, y)
}

func TestAxisLabels(t *testing.T) {
	assert.Equal(t, []string{"时间窗", "类目", "活跃度", "证据", "成本"}, AxisLabels(LocaleZH))
	assert.Equal(t, []string{"Time window", "Class", "Activity", "Evidence", "Cost"}, AxisLabels("EN"))
	assert.Len(t, AxisLabels(""), MetricCount)
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, LocaleEN, NormalizeLocale("en"))
	assert.Equal(t, LocaleEN, NormalizeLocale(" EN-gb "))
	assert.Equal(t, LocaleZH, NormalizeLocale("zh-CN"))
	assert.Equal(t, LocaleZH, NormalizeLocale(""))
	assert.Equal(t, LocaleZH, NormalizeLocale("fr"))
}
