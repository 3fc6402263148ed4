package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/gibbs/internal/presentation/tui"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() domain.RunRecord {
	return domain.RunRecord{
		ID:          "ctest0001",
		Unit:        "R-101",
		Model:       "molefraction",
		Feed:        domain.MaterialState{Name: "Feed", Composition: domain.Composition{"A": 1, "B": 3}, Temperature: 300, Pressure: 101325},
		Product:     domain.MaterialState{Name: "Feed", Composition: domain.Composition{"A": 1.5, "B": 2.5}, Temperature: 500, Pressure: 200000},
		GibbsEnergy: 4000,
		Fingerprint: "0123456789abcdef",
	}
}

func TestReport(t *testing.T) {
	md := tui.Report(sampleRecord())

	assert.Contains(t, md, "# R-101")
	assert.Contains(t, md, "| Model | molefraction |")
	assert.Contains(t, md, "| Temperature | 500 K |")
	assert.Contains(t, md, "`0123456789ab`")
	assert.Contains(t, md, "| A | 1 | 1.5 | +0.5 | 0.3750 |")
	assert.Contains(t, md, "| B | 3 | 2.5 | -0.5 | 0.6250 |")
	assert.Contains(t, md, "2 of 2 species changed")
}

func TestReport_Unchanged(t *testing.T) {
	rec := sampleRecord()
	rec.Product = rec.Feed.Clone()
	rec.Model = ""

	md := tui.Report(rec)
	assert.Contains(t, md, "| Model | custom |")
	assert.Contains(t, md, "identical to the feed")
}

func TestRenderer_Plain(t *testing.T) {
	render := tui.NewRenderer(true)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestRenderer_Glamour(t *testing.T) {
	render := tui.NewRenderer(false)
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestStatusLines(t *testing.T) {
	assert.True(t, strings.Contains(tui.Success("done"), "done"))
	assert.True(t, strings.Contains(tui.Failure("boom"), "boom"))
	assert.True(t, strings.Contains(tui.Muted("note"), "note"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
