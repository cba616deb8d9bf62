package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/guorui-lawtech/tmscan/pkg/export"
	"github.com/guorui-lawtech/tmscan/pkg/score"
)

// Row is a registration with its assessment.
type Row struct {
	Record     *data.Record      `json:"record" yaml:"record"`
	Assessment *score.Assessment `json:"assessment" yaml:"assessment"`
}

// Series is radar chart data.
type Series struct {
	Labels []string `json:"labels" yaml:"labels"`
	Data   []int    `json:"data" yaml:"data"`
}

// Diagnosis is the single registration deep dive.
type Diagnosis struct {
	Record     *data.Record      `json:"record" yaml:"record"`
	Assessment *score.Assessment `json:"assessment" yaml:"assessment"`
	Radar      *Series           `json:"radar" yaml:"radar"`
}

var columns = map[string][]string{
	score.LocaleZH: {"注册号", "名称", "日期", "权利人", "潜力得分", "机会评估", "法条依据"},
	score.LocaleEN: {"Registration No.", "Mark", "Date", "Owner", "Score", "Assessment", "Legal Basis"},
}

// Scan searches the source and scores every matching registration.
func Scan(ctx context.Context, src data.Source, ev *score.Evaluator, c *data.Criteria) ([]*Row, error) {
	if src == nil || ev == nil {
		return nil, errors.New("source and evaluator are required")
	}

	list, err := src.Search(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error searching %s: %w", src.Name(), err)
	}

	slog.Debug("scanning registrations", "source", src.Name(), "records", len(list))

	rows := make([]*Row, 0, len(list))
	for _, r := range list {
		rows = append(rows, &Row{
			Record:     r,
			Assessment: ev.Evaluate(r.RegDate),
		})
	}
	return rows, nil
}

// Diagnose scores one registration and builds its radar series.
func Diagnose(ctx context.Context, src data.Source, ev *score.Evaluator, regNumber string) (*Diagnosis, error) {
	if src == nil || ev == nil {
		return nil, errors.New("source and evaluator are required")
	}

	r, err := src.Get(ctx, regNumber)
	if err != nil {
		return nil, fmt.Errorf("error getting registration %s: %w", regNumber, err)
	}

	a := ev.Evaluate(r.RegDate)
	return &Diagnosis{
		Record:     r,
		Assessment: a,
		Radar:      RadarSeries(a, ev.Locale),
	}, nil
}

// RadarSeries pairs the assessment metrics with the axis labels.
func RadarSeries(a *score.Assessment, locale string) *Series {
	s := &Series{
		Labels: score.AxisLabels(locale),
		Data:   make([]int, 0, score.MetricCount),
	}
	if a != nil {
		s.Data = append(s.Data, a.Metrics[:]...)
	}
	return s
}

// Columns returns the table header for the locale.
func Columns(locale string) []string {
	return columns[score.NormalizeLocale(locale)]
}

// ToTable flattens scored rows in column order for display or export.
func ToTable(rows []*Row, locale string) *export.Table {
	t := export.NewTable(Columns(locale)...)
	for _, r := range rows {
		if r == nil || r.Record == nil || r.Assessment == nil {
			continue
		}
		t.Append(
			r.Record.RegNumber,
			r.Record.Name,
			r.Record.RegDate,
			r.Record.Owner,
			r.Assessment.Score,
			r.Assessment.Label,
			r.Assessment.LegalBasis,
		)
	}
	return t
}
