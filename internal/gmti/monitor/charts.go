// Package monitor renders the latest chain results as debug HTML charts and
// offline PNG plots.
package monitor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/gmti.report/internal/gmti/bridge"
	"github.com/banshee-data/gmti.report/internal/httputil"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridis ramp shared by the visual maps
var visualMapColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>GMTI Debug Charts</title></head>
<body style="margin:0;background:#111;color:#eee;font-family:sans-serif">
<h2 style="margin:8px">GMTI Debug Charts</h2>
<iframe src="/debug/charts/profile" style="width:100%;height:48vh;border:0"></iframe>
<iframe src="/debug/charts/detections" style="width:100%;height:48vh;border:0"></iframe>
</body>
</html>`

// AttachDebugRoutes mounts the chart handlers on the bridge mux. snapshot
// supplies the latest published model on every request.
func AttachDebugRoutes(mux *http.ServeMux, snapshot func() bridge.Model) {
	mux.HandleFunc("/debug/charts", handleDashboard)
	mux.HandleFunc("/debug/charts/profile", profileChartHandler(snapshot))
	mux.HandleFunc("/debug/charts/detections", detectionsChartHandler(snapshot))
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, dashboardHTML)
}

// profileChartHandler renders the power profile as a line chart.
func profileChartHandler(snapshot func() bridge.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model := snapshot()
		if len(model.PowerProfile) == 0 {
			httputil.WriteJSONError(w, http.StatusNotFound, "no run published yet")
			return
		}

		xs := make([]int, len(model.PowerProfile))
		data := make([]opts.LineData, len(model.PowerProfile))
		for i, p := range model.PowerProfile {
			xs[i] = i
			data[i] = opts.LineData{Value: p}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "GMTI Power Profile", Theme: "dark", Width: "1200px", Height: "560px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: "Power Profile", Subtitle: profileSubtitle(model)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Range bin", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Power", NameLocation: "middle", NameGap: 40}),
		)
		line.SetXAxis(xs).AddSeries("power", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

		renderChart(w, line)
	}
}

// detectionsChartHandler renders detections as a range/doppler scatter with
// SNR on the visual map.
func detectionsChartHandler(snapshot func() bridge.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model := snapshot()
		if len(model.DetectionRecords) == 0 {
			httputil.WriteJSONError(w, http.StatusNotFound, "no detections published yet")
			return
		}

		data := make([]opts.ScatterData, 0, len(model.DetectionRecords))
		maxSnr := 0.0
		for _, rec := range model.DetectionRecords {
			if rec.SnrDb > maxSnr {
				maxSnr = rec.SnrDb
			}
			data = append(data, opts.ScatterData{Value: []interface{}{rec.RangeM, rec.DopplerMps, rec.SnrDb}})
		}
		if maxSnr == 0 {
			maxSnr = 1
		}

		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "GMTI Detections", Theme: "dark", Width: "1200px", Height: "560px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: "Detections", Subtitle: detectionsSubtitle(model)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Range (m)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Doppler (m/s)", NameLocation: "middle", NameGap: 30}),
			charts.WithVisualMapOpts(opts.VisualMap{
				Show:       opts.Bool(true),
				Calculable: opts.Bool(true),
				Min:        0,
				Max:        float32(maxSnr),
				Dimension:  "2",
				InRange:    &opts.VisualMapInRange{Color: visualMapColors},
			}),
		)
		scatter.AddSeries("detections", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

		renderChart(w, scatter)
	}
}

func profileSubtitle(model bridge.Model) string {
	return fmt.Sprintf("scenario=%s points=%d detections=%d", scenarioName(model), len(model.PowerProfile), model.DetectionCount)
}

func detectionsSubtitle(model bridge.Model) string {
	return fmt.Sprintf("scenario=%s count=%d", scenarioName(model), len(model.DetectionRecords))
}

func scenarioName(model bridge.Model) string {
	if model.Scenario == nil || model.Scenario.Name == "" {
		return "unnamed"
	}
	return model.Scenario.Name
}

type renderer interface {
	Render(w io.Writer) error
}

func renderChart(w http.ResponseWriter, chart renderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
