// Package figures renders the comparison plots of a run with gonum/plot.
package figures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/auxmvc/auxmvc/mvc"
	"github.com/auxmvc/auxmvc/mvc/report"
)

// Config sets the figure geometry.
type Config struct {
	Width        float64 // inches
	Height       float64 // inches
	ThumbDPI     int     // 0 disables thumbnails
	FAPThreshold float64 // FAP used by the veto-dependent plots
	SignifColumn string  // descriptive column plotted against ranks
}

// DefaultConfig returns an 8x6 inch layout with 50 DPI thumbnails.
func DefaultConfig() Config {
	return Config{Width: 8, Height: 6, ThumbDPI: 50, FAPThreshold: 0.1, SignifColumn: "signif"}
}

// Plotter writes PNG figures named <tag>_<name>.png under dir.
type Plotter struct {
	dir string
	tag string
	cfg Config
}

// NewPlotter creates a Plotter.
func NewPlotter(dir, tag string, cfg Config) *Plotter {
	return &Plotter{dir: dir, tag: tag, cfg: cfg}
}

var _ report.Plotter = (*Plotter)(nil)

// chart builds one figure; a nil plot means there was nothing to draw.
type chart struct {
	name  string
	title string
	build func(tbl *mvc.Table, kinds []mvc.Kind) (*plot.Plot, error)
}

func (p *Plotter) charts(tbl *mvc.Table, kinds []mvc.Kind) []chart {
	thr := report.FormatThreshold(p.cfg.FAPThreshold)
	red := report.FormatThreshold(mvc.RedundancyFAP)
	charts := []chart{
		{"roc", "ROC curves", rocChart},
		{"redundancy_fap" + red, "Classifier redundancy at FAP " + red, p.redundancyChart},
		{"cumul_hist_signif_fap" + thr, "Cumulative significance of glitches surviving FAP " + thr, p.survivorChart},
	}
	for _, k := range kinds {
		charts = append(charts,
			chart{string(k) + "_rank_hist", fmt.Sprintf("%s rank distribution", k),
				func(tbl *mvc.Table, _ []mvc.Kind) (*plot.Plot, error) { return rankHistChart(tbl, k) }},
			chart{string(k) + "_rank_vs_signif", fmt.Sprintf("%s rank vs significance", k),
				func(tbl *mvc.Table, _ []mvc.Kind) (*plot.Plot, error) { return p.rankSignifChart(tbl, k) }},
			chart{string(k) + "_binned_signif", fmt.Sprintf("Significance per %s rank bin", k),
				func(tbl *mvc.Table, _ []mvc.Kind) (*plot.Plot, error) { return p.binnedChart(tbl, k) }},
		)
	}
	for i := 0; i < len(kinds); i++ {
		for j := i + 1; j < len(kinds); j++ {
			a, b := kinds[i], kinds[j]
			charts = append(charts, chart{
				fmt.Sprintf("fap_%s_vs_%s", a, b), fmt.Sprintf("Glitch FAP: %s vs %s", a, b),
				func(tbl *mvc.Table, _ []mvc.Kind) (*plot.Plot, error) { return fapScatterChart(tbl, a, b) },
			})
		}
	}
	return charts
}

// Plot renders every chart for kinds and returns the figures written.
func (p *Plotter) Plot(tbl *mvc.Table, kinds []mvc.Kind) ([]report.Figure, error) {
	var figs []report.Figure
	for _, c := range p.charts(tbl, kinds) {
		pl, err := c.build(tbl, kinds)
		if err != nil {
			return nil, fmt.Errorf("plotting %s: %w", c.name, err)
		}
		if pl == nil {
			logrus.Debugf("skipping figure %s: no data", c.name)
			continue
		}
		pl.Title.Text = fmt.Sprintf("Fig. %d: %s", len(figs)+1, c.title)
		fig, err := p.save(pl, c.name, c.title)
		if err != nil {
			return nil, err
		}
		figs = append(figs, fig)
	}
	logrus.Infof("wrote %d figures to %s", len(figs), p.dir)
	return figs, nil
}

func (p *Plotter) save(pl *plot.Plot, name, title string) (report.Figure, error) {
	fig := report.Figure{Name: name, Title: title, File: fmt.Sprintf("%s_%s.png", p.tag, name)}
	w, h := vg.Length(p.cfg.Width)*vg.Inch, vg.Length(p.cfg.Height)*vg.Inch
	if err := pl.Save(w, h, filepath.Join(p.dir, fig.File)); err != nil {
		return fig, fmt.Errorf("saving %s: %w", fig.File, err)
	}
	if p.cfg.ThumbDPI > 0 {
		fig.Thumb = fmt.Sprintf("%s_%s_thumb.png", p.tag, name)
		if err := writePNG(pl, w, h, p.cfg.ThumbDPI, filepath.Join(p.dir, fig.Thumb)); err != nil {
			return fig, err
		}
	}
	return fig, nil
}

func writePNG(pl *plot.Plot, w, h vg.Length, dpi int, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	pl.Draw(draw.New(c))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
