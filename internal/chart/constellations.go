package chart

import "github.com/satjeet/ClinePythonDividis/internal/domain"

// Constellation is one vital area on the constellation map.
type Constellation struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

var areaIcons = map[string]string{
	"Salud":           "fas fa-heartbeat",
	"Personalidad":    "fas fa-user-astronaut",
	"Intelecto":       "fas fa-brain",
	"Carrera":         "fas fa-rocket",
	"Finanzas":        "fas fa-coins",
	"Calidad de Vida": "fas fa-star",
	"Emocionalidad":   "fas fa-spa",
	"Relaciones":      "fas fa-users",
}

// Constellations returns the eight areas in display order. The area named
// active is flagged; an empty or unknown name activates the first area.
func Constellations(active string) []Constellation {
	if _, ok := areaIcons[active]; !ok {
		active = domain.VitalAreas[0]
	}
	out := make([]Constellation, 0, domain.AreaCount)
	for _, area := range domain.VitalAreas {
		out = append(out, Constellation{Name: area, Icon: areaIcons[area], Active: area == active})
	}
	return out
}
