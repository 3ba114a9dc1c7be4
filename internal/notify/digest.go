package notify

import (
	"fmt"
	"strings"

	"github.com/pariscan/pariscan/internal/domain"
)

// digestLeaders is how many leaderboard rows the scan digest includes.
const digestLeaders = 5

// ScanDigest renders a completed report into a title and message suitable for
// the Notifier. Telegram and Discord both render plain text fine, so the body
// stays markup-free.
func ScanDigest(report domain.Report) (title, message string) {
	title = fmt.Sprintf("Scan complete: %d agents, %d markets",
		report.Totals.Agents, report.Totals.Markets+report.Totals.RaceMarkets)

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Positions: %d | Total wagered: %s coins\n",
		report.Totals.Positions, report.Totals.TotalWagered.StringFixed(4))
	fmt.Fprintf(&b, "Markets: %d active, %d resolved\n",
		len(report.ActiveMarkets), len(report.ResolvedMarkets))

	if len(report.Leaderboard) > 0 {
		b.WriteString("\nTop agents by net P&L:\n")
		for i, a := range report.Leaderboard {
			if i >= digestLeaders {
				break
			}
			pnl := a.NetPnL.StringFixed(4)
			if a.NetPnL.Sign() >= 0 {
				pnl = "+" + pnl
			}
			fmt.Fprintf(&b, "%d. %s  %s coins (%d-%d",
				i+1, a.DisplayName, pnl, a.Wins, a.Losses)
			if a.Streak != 0 {
				fmt.Fprintf(&b, ", streak %+d", a.Streak)
			}
			b.WriteString(")\n")
		}
	}

	return title, strings.TrimRight(b.String(), "\n")
}
