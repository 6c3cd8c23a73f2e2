package stats

import (
	"fmt"
	"strings"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

// FormatTotals renders the all-time counters for the CLI.
func FormatTotals(totals *TotalStats) string {
	if totals.TotalFires == 0 && totals.TotalDrops == 0 {
		return "📊 No usage recorded yet. Fire a key to start counting!"
	}

	out := "📊 Total Statistics:\n"
	out += fmt.Sprintf("   Keys fired: %d\n", totals.TotalFires)
	out += fmt.Sprintf("   Rate-limited: %d\n", totals.TotalDrops)
	if parts := actionParts(totals.PerAction); len(parts) > 0 {
		out += fmt.Sprintf("   Actions: %s\n", strings.Join(parts, ", "))
	}
	out += fmt.Sprintf("   Days tracked: %d\n", totals.Days)

	if key, count := mostUsed(totals.PerKey); key != keymap.KeyNone {
		out += fmt.Sprintf("   Favorite key: %s (%d fires)\n", key, count)
	}

	return out
}

// FormatRecent renders a per-day activity list, oldest first.
func FormatRecent(days []*DailyStats) string {
	if len(days) == 0 {
		return "📅 No recent activity."
	}

	out := "📅 Recent Activity:\n"
	for _, day := range days {
		out += fmt.Sprintf("   %s: %d fired, %d rate-limited\n", day.Date, day.TotalFires, day.TotalDrops)
	}

	return out
}

// actionParts lists the non-zero action type counts in a fixed order.
func actionParts(perAction map[string]int) []string {
	var parts []string
	for _, kind := range []action.Type{action.TypeSystem, action.TypeOpenApp, action.TypeOpenURL, action.TypeShellCommand} {
		if n := perAction[string(kind)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", kind, n))
		}
	}
	return parts
}

// mostUsed picks the key with the highest fire count, lowest key winning
// ties so the output is stable.
func mostUsed(perKey map[string]int) (keymap.Key, int) {
	best := keymap.KeyNone
	bestCount := 0
	for _, k := range keymap.All() {
		if n := perKey[k.Index()]; n > bestCount {
			best = k
			bestCount = n
		}
	}
	return best, bestCount
}
