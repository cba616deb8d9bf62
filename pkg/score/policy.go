package score

// Band is the qualitative opportunity category.
type Band string

const (
	BandVeryHigh Band = "very-high"
	BandModerate Band = "moderate"
	BandLow      Band = "low"
	BandError    Band = "error"

	// MetricCount is the number of radar chart dimensions.
	MetricCount = 5

	legalBasisNone = "N/A"
)

// Metrics is the radar chart vector, each value in 0-100.
type Metrics [MetricCount]int

// Text is a fixed Chinese/English label pair.
type Text struct {
	ZH string `json:"zh" yaml:"zh"`
	EN string `json:"en" yaml:"en"`
}

// For returns the label for the locale, Chinese unless English is requested.
func (t Text) For(locale string) string {
	if locale == LocaleEN && t.EN != "" {
		return t.EN
	}
	return t.ZH
}

// Rule is one row of the classification table.
type Rule struct {
	Band       Band    `json:"band" yaml:"band"`
	Score      int     `json:"score" yaml:"score"`
	Label      Text    `json:"label" yaml:"label"`
	LegalBasis string  `json:"legal_basis" yaml:"legalBasis"`
	Metrics    Metrics `json:"metrics" yaml:"metrics"`
}

// Policy holds the statutory window and the rule for each band.
// Thresholds are inclusive on the very high band.
type Policy struct {
	WindowStartYears float64 `json:"window_start_years" yaml:"windowStartYears"`
	WindowEndYears   float64 `json:"window_end_years" yaml:"windowEndYears"`
	VeryHigh         Rule    `json:"very_high" yaml:"veryHigh"`
	Moderate         Rule    `json:"moderate" yaml:"moderate"`
	Low              Rule    `json:"low" yaml:"low"`
	Error            Rule    `json:"error" yaml:"error"`
}

// DefaultPolicy is the TMA classification table. The cutoffs and citations
// are policy data pending legal review, not derived values.
var DefaultPolicy = &Policy{
	WindowStartYears: 3,
	WindowEndYears:   10,
	VeryHigh: Rule{
		Band:       BandVeryHigh,
		Score:      95,
		Label:      Text{ZH: "✅ 极高 (TMA黄金期)", EN: "Very high (statutory window)"},
		LegalBasis: "Section 16H (Expungement)",
		Metrics:    Metrics{95, 85, 90, 70, 80},
	},
	Moderate: Rule{
		Band:       BandModerate,
		Score:      65,
		Label:      Text{ZH: "⚠️ 中等 (常规路径)", EN: "Moderate (standard path)"},
		LegalBasis: "Section 14 (Cancellation)",
		Metrics:    Metrics{65, 70, 60, 85, 75},
	},
	Low: Rule{
		Band:       BandLow,
		Score:      25,
		Label:      Text{ZH: "❌ 较低 (保护期内)", EN: "Low (within protection period)"},
		LegalBasis: legalBasisNone,
		Metrics:    Metrics{25, 40, 20, 90, 50},
	},
	Error: Rule{
		Band:       BandError,
		Score:      0,
		Label:      Text{ZH: "数据异常", EN: "Data error"},
		LegalBasis: legalBasisNone,
		Metrics:    Metrics{0, 0, 0, 0, 0},
	},
}

// Axes are the radar chart dimension names in metric order.
var Axes = [MetricCount]Text{
	{ZH: "时间窗", EN: "Time window"},
	{ZH: "类目", EN: "Class"},
	{ZH: "活跃度", EN: "Activity"},
	{ZH: "证据", EN: "Evidence"},
	{ZH: "成本", EN: "Cost"},
}

// AxisLabels returns the radar axis names for the locale.
func AxisLabels(locale string) []string {
	locale = NormalizeLocale(locale)
	list := make([]string, 0, MetricCount)
	for _, a := range Axes {
		list = append(list, a.For(locale))
	}
	return list
}
