package figures

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/auxmvc/auxmvc/mvc"
	"github.com/auxmvc/auxmvc/mvc/report"
)

const (
	histBins   = 50
	rankBins   = 10
	offScaleID = "off-scale"
)

// logLog switches both axes to log scale. Call it after the data is added:
// a degenerate range is widened by a decade since log axes cannot pad below 0.
func logLog(pl *plot.Plot) {
	for _, ax := range []*plot.Axis{&pl.X, &pl.Y} {
		if ax.Min == ax.Max {
			ax.Min /= 10
			ax.Max *= 10
		}
	}
	pl.X.Scale = plot.LogScale{}
	pl.X.Tick.Marker = plot.LogTicks{Prec: -1}
	pl.Y.Scale = plot.LogScale{}
	pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

// finite reports whether v can be placed on a linear axis.
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// rocChart draws efficiency against FAP over the glitch triggers of every kind.
func rocChart(tbl *mvc.Table, kinds []mvc.Kind) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = "False Alarm Probability"
	pl.Y.Label.Text = "Efficiency"
	drawn := 0
	for i, k := range kinds {
		var xys plotter.XYs
		for _, g := range tbl.Glitches() {
			s := g.Score(k)
			if s.FAP > 0 && s.EFF > 0 {
				xys = append(xys, plotter.XY{X: s.FAP, Y: s.EFF})
			}
		}
		if len(xys) == 0 {
			continue
		}
		sort.Slice(xys, func(a, b int) bool { return xys[a].X < xys[b].X })
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		pl.Add(line)
		pl.Legend.Add(string(k), line)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	logLog(pl)
	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Add(plotter.NewGrid())
	return pl, nil
}

// redundancyChart draws how many glitches each combination of classifiers
// removes at the fixed redundancy FAP, over all glitches and on both sides of
// the significance split.
func (p *Plotter) redundancyChart(tbl *mvc.Table, kinds []mvc.Kind) (*plot.Plot, error) {
	if len(kinds) == 0 || len(tbl.Glitches()) == 0 {
		return nil, nil
	}
	rc := report.RedundancyOf(tbl, kinds, p.cfg.SignifColumn)
	split := report.FormatThreshold(rc.Split)
	series := []struct {
		label  string
		counts []int
	}{
		{"all glitches", rc.All},
		{"signif <= " + split, rc.Below},
		{"signif >= " + split, rc.Above},
	}

	pl := plot.New()
	width := vg.Points(4)
	for i, s := range series {
		if s.counts == nil {
			continue
		}
		values := make(plotter.Values, len(s.counts))
		for w, n := range s.counts {
			values[w] = float64(n)
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(i-1) * width
		pl.Add(bars)
		pl.Legend.Add(s.label, bars)
	}
	labels := make([]string, len(rc.All))
	for w := range labels {
		labels[w] = mvc.WordLabel(w, len(kinds))
	}
	pl.NominalX(labels...)
	pl.X.Tick.Label.Rotation = math.Pi / 2
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.X.Tick.Label.YAlign = draw.YCenter
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	pl.X.Label.Text = "Removed by (" + strings.Join(names, " ") + ")"
	pl.Y.Label.Text = "Number of glitches"
	pl.Legend.Top = true
	return pl, nil
}

// cumulative returns the (value, number of values >= value) curve over the
// positive entries of vals.
func cumulative(vals []float64) plotter.XYs {
	pos := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v > 0 && finite(v) {
			pos = append(pos, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(pos)))
	xys := make(plotter.XYs, len(pos))
	for i, v := range pos {
		xys[i] = plotter.XY{X: v, Y: float64(i + 1)}
	}
	return xys
}

// survivorChart draws the cumulative significance of glitches before
// vetoing and after vetoing with each classifier at the FAP threshold.
func (p *Plotter) survivorChart(tbl *mvc.Table, kinds []mvc.Kind) (*plot.Plot, error) {
	signif, err := tbl.Column(p.cfg.SignifColumn)
	if err != nil {
		logrus.Debugf("no %s column: %v", p.cfg.SignifColumn, err)
		return nil, nil
	}
	glitches := tbl.Glitches()
	before := cumulative(mvc.Column(glitches, signif))
	if len(before) == 0 {
		return nil, nil
	}

	pl := plot.New()
	pl.X.Label.Text = "Significance"
	pl.Y.Label.Text = "Number of glitches"
	line, err := plotter.NewLine(before)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)
	pl.Add(line)
	pl.Legend.Add("before vetoing", line)

	for i, k := range kinds {
		res := mvc.VetoUnderFAP(glitches, k, p.cfg.FAPThreshold)
		xys := cumulative(mvc.Column(res.Remaining, signif))
		if len(xys) == 0 {
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = plotutil.Color(i + 1)
		l.LineStyle.Dashes = plotutil.Dashes(i + 1)
		pl.Add(l)
		pl.Legend.Add(string(k), l)
	}
	logLog(pl)
	pl.Legend.Top = true
	return pl, nil
}

// rankValues returns the finite ranks of kind k below OffScaleRank.
func rankValues(rows []*mvc.Trigger, k mvc.Kind) plotter.Values {
	var vals plotter.Values
	for _, r := range rows {
		v := r.Score(k).Rank
		if finite(v) && v < mvc.OffScaleRank {
			vals = append(vals, v)
		}
	}
	return vals
}

// rankHistChart overlays the normalized rank distributions of glitch and clean triggers.
func rankHistChart(tbl *mvc.Table, k mvc.Kind) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = string(k) + " rank"
	pl.Y.Label.Text = "Probability density"
	drawn := 0
	for i, sample := range []struct {
		label string
		rows  []*mvc.Trigger
	}{{"glitch", tbl.Glitches()}, {"clean", tbl.Cleans()}} {
		vals := rankValues(sample.rows, k)
		if len(vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(vals, histBins)
		if err != nil {
			return nil, err
		}
		h.Normalize(1)
		h.FillColor = nil
		h.LineStyle.Color = plotutil.Color(i)
		pl.Add(h)
		pl.Legend.Add(sample.label, h)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	pl.Legend.Top = true
	return pl, nil
}

// rankSignifChart scatters glitch significance against rank. Off-scale
// combined ranks are drawn as a separate series just right of the finite ones.
func (p *Plotter) rankSignifChart(tbl *mvc.Table, k mvc.Kind) (*plot.Plot, error) {
	signif, err := tbl.Column(p.cfg.SignifColumn)
	if err != nil {
		return nil, nil
	}
	var onScale, offScale plotter.XYs
	var offSignif []float64
	for _, g := range tbl.Glitches() {
		r, s := g.Score(k).Rank, signif(g)
		if !finite(s) {
			continue
		}
		switch {
		case r >= mvc.OffScaleRank:
			offSignif = append(offSignif, s)
		case finite(r):
			onScale = append(onScale, plotter.XY{X: r, Y: s})
		}
	}
	if len(onScale) == 0 && len(offSignif) == 0 {
		return nil, nil
	}

	pl := plot.New()
	pl.X.Label.Text = string(k) + " rank"
	pl.Y.Label.Text = "Significance"
	if len(onScale) > 0 {
		sc, err := plotter.NewScatter(onScale)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = plotutil.Color(0)
		sc.GlyphStyle.Radius = vg.Points(1.5)
		pl.Add(sc)
		pl.Legend.Add("glitches", sc)
	}
	if len(offSignif) > 0 {
		edge := 1.0
		if len(onScale) > 0 {
			xs := make([]float64, len(onScale))
			for i, xy := range onScale {
				xs[i] = xy.X
			}
			edge = floats.Max(xs) * 1.1
		}
		for _, s := range offSignif {
			offScale = append(offScale, plotter.XY{X: edge, Y: s})
		}
		sc, err := plotter.NewScatter(offScale)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = plotutil.Color(1)
		sc.GlyphStyle.Shape = plotutil.Shape(1)
		pl.Add(sc)
		pl.Legend.Add(offScaleID, sc)
	}
	pl.Legend.Top = true
	return pl, nil
}

// binErrors adapts rank bins to plotter.XYer and plotter.YErrorer, using the
// standard error of the mean as the symmetric error.
type binErrors []mvc.Bin

func (b binErrors) Len() int                       { return len(b) }
func (b binErrors) XY(i int) (float64, float64)    { return b[i].Center(), b[i].Mean }
func (b binErrors) YError(i int) (float64, float64) { return b[i].StdErr, b[i].StdErr }

// binnedChart draws mean glitch significance per rank bin with error bars.
func (p *Plotter) binnedChart(tbl *mvc.Table, k mvc.Kind) (*plot.Plot, error) {
	signif, err := tbl.Column(p.cfg.SignifColumn)
	if err != nil {
		return nil, nil
	}
	rank, err := tbl.Column(string(k) + "_rank")
	if err != nil {
		return nil, err
	}
	glitches := tbl.Glitches()
	lo, hi := mvc.RankRange(k)
	if k == mvc.Combined {
		vals := rankValues(glitches, k)
		if len(vals) == 0 {
			return nil, nil
		}
		lo, hi = floats.Min(vals), floats.Max(vals)
	}

	var filled binErrors
	for _, b := range mvc.BinnedStats(glitches, rank, signif, lo, hi, rankBins) {
		if b.N > 0 {
			filled = append(filled, b)
		}
	}
	if len(filled) == 0 {
		return nil, nil
	}

	pl := plot.New()
	pl.X.Label.Text = string(k) + " rank"
	pl.Y.Label.Text = "Mean significance"
	line, points, err := plotter.NewLinePoints(filled)
	if err != nil {
		return nil, err
	}
	bars, err := plotter.NewYErrorBars(filled)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)
	points.GlyphStyle.Color = plotutil.Color(0)
	pl.Add(line, points, bars)
	return pl, nil
}

// fapScatterChart compares the glitch FAPs of two classifiers.
func fapScatterChart(tbl *mvc.Table, a, b mvc.Kind) (*plot.Plot, error) {
	var xys plotter.XYs
	for _, g := range tbl.Glitches() {
		x, y := g.Score(a).FAP, g.Score(b).FAP
		if x > 0 && y > 0 {
			xys = append(xys, plotter.XY{X: x, Y: y})
		}
	}
	if len(xys) == 0 {
		return nil, nil
	}
	pl := plot.New()
	pl.X.Label.Text = string(a) + " FAP"
	pl.Y.Label.Text = string(b) + " FAP"
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	pl.Add(sc)
	logLog(pl)
	return pl, nil
}
