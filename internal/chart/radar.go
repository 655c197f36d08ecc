// Package chart builds the chart documents the dashboard renders: the vital
// radar option and the constellation map.
package chart

import "github.com/satjeet/ClinePythonDividis/internal/domain"

// DefaultValues are shown until a survey result with all eight areas exists.
var DefaultValues = [domain.AreaCount]float64{80, 60, 70, 30, 40, 50, 20, 60}

// Theme colors.
const (
	BackgroundColor = "#090f20"
	SeriesColor     = "#38bdf8"
	GridColor       = "#1e293b"
	LabelColor      = "#fff"
	LabelFont       = "Orbitron, sans-serif"
)

const (
	indicatorMax = 100
	seriesName   = "Progreso Vital"
	dataName     = "Progreso"
)

// Option is a radar chart option document, serialized in the shape the
// charting library expects.
type Option struct {
	BackgroundColor string   `json:"backgroundColor"`
	Tooltip         struct{} `json:"tooltip"`
	Radar           Radar    `json:"radar"`
	Series          []Series `json:"series"`
}

type Radar struct {
	Indicator []Indicator `json:"indicator"`
	Radius    string      `json:"radius"`
	Center    [2]string   `json:"center"`
	AxisName  AxisName    `json:"axisName"`
	AxisLine  Line        `json:"axisLine"`
	SplitLine Line        `json:"splitLine"`
	SplitArea SplitArea   `json:"splitArea"`
}

type Indicator struct {
	Name string `json:"name"`
	Max  int    `json:"max"`
}

type AxisName struct {
	Color      string `json:"color"`
	FontSize   int    `json:"fontSize"`
	FontFamily string `json:"fontFamily"`
}

type Line struct {
	LineStyle LineStyle `json:"lineStyle"`
}

type LineStyle struct {
	Color string `json:"color"`
}

type SplitArea struct {
	AreaStyle struct {
		Color []string `json:"color"`
	} `json:"areaStyle"`
}

type Series struct {
	Name string       `json:"name"`
	Type string       `json:"type"`
	Data []SeriesData `json:"data"`
}

type SeriesData struct {
	Value     []float64 `json:"value"`
	Name      string    `json:"name"`
	AreaStyle AreaStyle `json:"areaStyle"`
	LineStyle LineStyle `json:"lineStyle"`
}

type AreaStyle struct {
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
}

// ChartValues returns values when it holds exactly one value per vital area,
// otherwise a copy of DefaultValues.
func ChartValues(values []float64) []float64 {
	if len(values) == domain.AreaCount {
		return append([]float64(nil), values...)
	}
	return append([]float64(nil), DefaultValues[:]...)
}

// RadarOption builds the vital radar for values.
func RadarOption(values []float64) Option {
	indicators := make([]Indicator, 0, domain.AreaCount)
	for _, area := range domain.VitalAreas {
		indicators = append(indicators, Indicator{Name: area, Max: indicatorMax})
	}

	opt := Option{
		BackgroundColor: BackgroundColor,
		Radar: Radar{
			Indicator: indicators,
			Radius:    "70%",
			Center:    [2]string{"50%", "50%"},
			AxisName:  AxisName{Color: LabelColor, FontSize: 12, FontFamily: LabelFont},
			AxisLine:  Line{LineStyle: LineStyle{Color: GridColor}},
			SplitLine: Line{LineStyle: LineStyle{Color: GridColor}},
		},
		Series: []Series{{
			Name: seriesName,
			Type: "radar",
			Data: []SeriesData{{
				Value:     ChartValues(values),
				Name:      dataName,
				AreaStyle: AreaStyle{Opacity: 0.5, Color: SeriesColor},
				LineStyle: LineStyle{Color: SeriesColor},
			}},
		}},
	}
	opt.Radar.SplitArea.AreaStyle.Color = []string{"rgba(255, 255, 255, 0.05)", "rgba(255, 255, 255, 0.02)"}
	return opt
}
