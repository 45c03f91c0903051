package chart

import "ValueZone/internal/model"

var labels = map[model.Zone]string{
	model.ZoneVeryCheap:     "Very Cheap",
	model.ZoneCheap:         "Cheap",
	model.ZoneFairValue:     "Fair Value",
	model.ZoneExpensive:     "Expensive",
	model.ZoneVeryExpensive: "Very Expensive",
}

var colors = map[model.Zone]string{
	model.ZoneVeryCheap:     "blue",
	model.ZoneCheap:         "green",
	model.ZoneFairValue:     "yellow",
	model.ZoneExpensive:     "orange",
	model.ZoneVeryExpensive: "red",
}

// Label returns the English display name of z, or z itself if unknown.
func Label(z model.Zone) string {
	if l, ok := labels[z]; ok {
		return l
	}
	return string(z)
}

// Color returns the CSS colour used for z's band, gray if unknown.
func Color(z model.Zone) string {
	if c, ok := colors[z]; ok {
		return c
	}
	return "gray"
}

// LegendOrder lists zones most expensive first, as shown in legends and tables.
func LegendOrder() []model.Zone {
	out := make([]model.Zone, len(model.Zones))
	for i, z := range model.Zones {
		out[len(out)-1-i] = z
	}
	return out
}

// Title is the chart heading for an analysis.
func Title(a *model.Analysis) string {
	return a.Symbol + " Stock Analysis Chart (Current Zone: " + Label(a.Assignment.Zone) + ")"
}
