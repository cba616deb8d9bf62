package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guorui-lawtech/tmscan/pkg/analysis"
	"github.com/guorui-lawtech/tmscan/pkg/config"
	"github.com/guorui-lawtech/tmscan/pkg/export"
	"github.com/guorui-lawtech/tmscan/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	original := slog.Default()
	code := m.Run()
	slog.SetDefault(original)
	os.Exit(code)
}

// run executes the app against a temp config dir and returns stdout.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)

	argv := append([]string{"tmscan", "--config", dir}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func TestEvaluate(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "evaluate", "--date", "2016-12-06")
	require.NoError(t, err)

	var a score.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Contains(t, []int{95, 65}, a.Score)
	assert.NotEmpty(t, a.LegalBasis)
}

func TestEvaluate_InvalidDate(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "--locale", "en", "evaluate", "--date", "yesterday")
	require.NoError(t, err)

	var a score.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, score.BandError, a.Band)
	assert.Equal(t, "N/A", a.LegalBasis)
}

func TestEvaluate_MissingDate(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "evaluate")
	assert.Error(t, err)
}

func TestSearch_YAML(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "--format", "yaml", "search", "--class", "009", "--limit", "2")
	require.NoError(t, err)

	var rows []*analysis.Row
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "5093077", rows[0].Record.RegNumber)
}

func TestSearch_BadCriteria(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "search", "--from", "2020-01-01", "--to", "2010-01-01")
	assert.Error(t, err)

	_, err = run(t, t.TempDir(), "", "--format", "xml", "search")
	assert.Error(t, err)
}

func TestDiagnose(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "diagnose", "--id", "6288192")
	require.NoError(t, err)

	var d analysis.Diagnosis
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "AI-MAX", d.Record.Name)
	assert.Len(t, d.Radar.Labels, score.MetricCount)

	_, err = run(t, dir, "", "diagnose", "--id", "404")
	assert.Error(t, err)
}

func TestExportAndInspect(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.zip")

	res, err := run(t, dir, "", "export", "--class", "009", "--csv", "--out", out)
	require.NoError(t, err)

	var r exportResult
	require.NoError(t, json.Unmarshal([]byte(res), &r))
	assert.Equal(t, export.FormatCSV, r.Format)
	assert.Equal(t, 3, r.Rows)
	assert.NotEmpty(t, r.ID)

	res, err = run(t, dir, "", "inspect", "--file", out)
	require.NoError(t, err)

	var c export.Contents
	require.NoError(t, json.Unmarshal([]byte(res), &c))
	assert.Equal(t, []string{"GuoRui_Report.csv", export.SummaryFileName}, c.Entries)
	assert.Contains(t, c.Summary, r.ID)
	require.Len(t, c.Records, 4)
	assert.Equal(t, "注册号", c.Records[0][0])
}

func TestExport_Empty(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "", "export", "--class", "045", "--out", filepath.Join(dir, "x.zip"))
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "x.zip"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspect_Missing(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "inspect", "--file", "nope.zip")
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`registrations:
  - reg_number: "8000001"
    name: NEWMARK
    reg_date: "2015-06-01"
    owner: 测试有限公司
    classes: ["009"]
`), 0600))

	_, err := run(t, dir, "", "catalog", "state")
	assert.Error(t, err)

	out, err := run(t, dir, "", "catalog", "import", "--file", seed, "--use")
	require.NoError(t, err)

	var state map[string]int64
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, int64(1), state["registrations"])

	cfg, err := config.ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "catalog.db"), cfg.Catalog.Path)

	// search now reads the catalogue instead of the demonstration records
	out, err = run(t, dir, "", "diagnose", "--id", "8000001")
	require.NoError(t, err)
	assert.Contains(t, out, "NEWMARK")

	_, err = run(t, dir, "", "diagnose", "--id", "5093077")
	assert.Error(t, err)

	out, err = run(t, dir, "", "catalog", "import")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, int64(7), state["registrations"])

	out, err = run(t, dir, "n\n", "catalog", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = run(t, dir, "y\n", "catalog", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset complete.")

	out, err = run(t, dir, "", "catalog", "state")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, int64(0), state["registrations"])
}

func TestAuth(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "auth")
	require.NoError(t, err)
	assert.Contains(t, out, "Access key: ")

	h, err := keyring.Get("tmscan", "access_key_hash")
	require.NoError(t, err)
	assert.NotEmpty(t, h)

	out, err = run(t, dir, "", "auth", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	_, err = keyring.Get("tmscan", "access_key_hash")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestServer_InvalidPort(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "server", "--port", "70000")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("locale: fr\n"), 0600))

	_, err := run(t, dir, "", "evaluate", "--date", "2016-12-06")
	assert.Error(t, err)
}
