package notifier

import (
	"fmt"
	"html"
	"strings"

	"ValueZone/internal/chart"
	"ValueZone/internal/model"
)

var zoneEmoji = map[model.Zone]string{
	model.ZoneVeryCheap:     "🔵",
	model.ZoneCheap:         "🟢",
	model.ZoneFairValue:     "🟡",
	model.ZoneExpensive:     "🟠",
	model.ZoneVeryExpensive: "🔴",
}

// FormatBandRange renders a band as "lo - hi", or "lo and above" for the open band.
func FormatBandRange(b model.ValuationBand) string {
	if b.Unbounded() {
		return fmt.Sprintf("%.2f and above", b.Lower)
	}
	return fmt.Sprintf("%.2f - %.2f", b.Lower, b.Upper)
}

// FormatAnalysis formats a valuation for Telegram.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	z := a.Assignment.Zone

	fmt.Fprintf(&b, "📊 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), a.AnalyzedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Price: %.2f\n", a.Assignment.Price)
	fmt.Fprintf(&b, "%dW MA: %.2f (%+.1f%%)\n", a.Window, a.LatestBaseline, a.Indicators.DeviationPct)
	fmt.Fprintf(&b, "Zone: %s <b>%s</b>\n\n", zoneEmoji[z], chart.Label(z))

	b.WriteString("<b>Zones:</b>\n")
	for _, name := range chart.LegendOrder() {
		band, ok := a.Band(name)
		if !ok {
			continue
		}
		marker := "  "
		if name == z {
			marker = "▶ "
		}
		fmt.Fprintf(&b, "%s%s %s: %s\n", marker, zoneEmoji[name], chart.Label(name), FormatBandRange(band))
	}

	ind := a.Indicators
	if ind.High52w > 0 {
		fmt.Fprintf(&b, "\n52W range: %.2f - %.2f (position %.0f%%)\n", ind.Low52w, ind.High52w, ind.Position52w*100)
	}
	if ind.WeeklyRSI > 0 {
		fmt.Fprintf(&b, "Weekly RSI(14): %.1f\n", ind.WeeklyRSI)
	}
	return b.String()
}

// FormatZoneTransition formats a zone change alert.
func FormatZoneTransition(t *model.ZoneTransition) string {
	direction := "⬆️ more expensive"
	if t.Cheaper() {
		direction = "⬇️ cheaper"
	}
	return fmt.Sprintf("🔔 <b>%s zone change</b> (%s)\n%s %s → %s %s\nPrice: %.2f | %s",
		html.EscapeString(t.Symbol), direction,
		zoneEmoji[t.From], chart.Label(t.From),
		zoneEmoji[t.To], chart.Label(t.To),
		t.Price, t.At.Format("2006-01-02 15:04"))
}

// FormatError formats a failed valuation for a chat reply.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}

// FormatWatchlist lists the watched symbols with their last known zone.
func FormatWatchlist(symbols []string, last map[string]model.Zone) string {
	if len(symbols) == 0 {
		return "Watchlist is empty."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n")
	for _, s := range symbols {
		z, ok := last[s]
		if !ok {
			fmt.Fprintf(&b, "  %s: -\n", html.EscapeString(s))
			continue
		}
		fmt.Fprintf(&b, "  %s: %s %s\n", html.EscapeString(s), zoneEmoji[z], chart.Label(z))
	}
	return b.String()
}

// HelpText lists the supported bot commands.
func HelpText() string {
	return "Commands:\n/zone &lt;SYMBOL&gt; - current valuation zone\n/watchlist - watched symbols and last zones\n/help - this message"
}
