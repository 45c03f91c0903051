package chart

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
	"ValueZone/internal/valuation"
	"ValueZone/internal/zone"
)

func sampleAnalysis(t *testing.T) *model.Analysis {
	t.Helper()
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, 260)
	for i := range pts {
		pts[i] = model.PricePoint{
			Time:  start.AddDate(0, 0, 7*i),
			Close: 100 + 20*math.Sin(float64(i)/10) + float64(i)/4,
		}
	}
	series := &model.PriceSeries{Symbol: "QQQ", Interval: "1wk", Period: "10y", Points: pts}
	a, err := valuation.Evaluate(series, 200, zone.DefaultPolicy())
	require.NoError(t, err)
	return a
}

func TestRender(t *testing.T) {
	a := sampleAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
	assert.Contains(t, out, Title(a))
	assert.Contains(t, out, "QQQ Price")
	assert.Contains(t, out, "200W Moving Average")
	assert.Equal(t, 5, strings.Count(out, `class="band"`))
	assert.Equal(t, 1, strings.Count(out, `class="price"`))
	assert.NotContains(t, out, "NaN")
	assert.NotContains(t, out, "Inf")
}

func TestRender_LegendUsesWindow(t *testing.T) {
	a := sampleAnalysis(t)
	short, err := valuation.Evaluate(a.Series, 50, zone.DefaultPolicy())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, short))
	assert.Contains(t, buf.String(), ">50W Moving Average<")
	assert.NotContains(t, buf.String(), "200W")

	assert.Equal(t, "Moving Average", baselineLabel(0))
}

func TestRender_LegendMostExpensiveFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleAnalysis(t)))
	out := buf.String()

	prev := -1
	for _, z := range LegendOrder() {
		idx := strings.Index(out, ">"+Label(z)+" Zone<")
		require.Greater(t, idx, prev, "legend entry %s out of order", z)
		prev = idx
	}
}

func TestRender_BaselineGapBeforeWindow(t *testing.T) {
	a := sampleAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a))

	i := strings.Index(buf.String(), `class="baseline" d="`)
	require.GreaterOrEqual(t, i, 0)
	path := buf.String()[i+len(`class="baseline" d="`):]
	path = path[:strings.Index(path, `"`)]

	// 260 points with a 200-week window leave 61 defined values in one subpath.
	assert.Equal(t, 1, strings.Count(path, "M"))
	assert.Equal(t, 60, strings.Count(path, "L"))
}

func TestRender_EscapesSymbol(t *testing.T) {
	a := sampleAnalysis(t)
	a.Symbol = "<X&Y>"
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a))
	assert.NotContains(t, buf.String(), "<X&Y>")
	assert.Contains(t, buf.String(), "&lt;X&amp;Y&gt;")
}

func TestRender_NothingToDraw(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, nil))
	assert.Error(t, Render(&buf, &model.Analysis{Series: &model.PriceSeries{}}))
	assert.Zero(t, buf.Len())
}

func TestDrawnUpper(t *testing.T) {
	bands, err := zone.ComputeZones(100)
	require.NoError(t, err)
	top := bands[len(bands)-1]
	assert.Equal(t, 500.0, drawnUpper(top, bands))
	assert.Equal(t, 150.0, drawnUpper(bands[1], bands))
}

func TestLabelAndColor(t *testing.T) {
	assert.Equal(t, "Fair Value", Label(model.ZoneFairValue))
	assert.Equal(t, "Very Expensive", Label(model.ZoneVeryExpensive))
	assert.Equal(t, "mystery", Label("mystery"))
	assert.Equal(t, "blue", Color(model.ZoneVeryCheap))
	assert.Equal(t, "red", Color(model.ZoneVeryExpensive))
	assert.Equal(t, "gray", Color("mystery"))
	assert.Equal(t, model.ZoneVeryExpensive, LegendOrder()[0])
	assert.Equal(t, model.ZoneVeryCheap, LegendOrder()[4])
}

func TestLogTicks(t *testing.T) {
	assert.Equal(t, []float64{50, 100, 200}, logTicks(40, 300))
}
