// Package analytics turns one decoded snapshot into the leaderboard and
// per-market views. It is a total function over whatever records survived
// decoding: positions whose market is missing from the snapshot are dropped,
// never faulted, because ledger snapshots can be slightly inconsistent
// mid-scan.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pariscan/pariscan/internal/domain"
	"github.com/pariscan/pariscan/internal/settle"
)

// Diagnostics counts records the aggregator silently dropped. Callers may
// log them; the report itself only reflects what survived.
type Diagnostics struct {
	DroppedPositions int // binary positions referencing an unknown market id
	DroppedRaceBets  int // race bets with an unknown market or stale outcome index
}

// agentAccum collects one owner's running totals during the grouping pass.
type agentAccum struct {
	wallet   domain.PublicKey
	wagered  decimal.Decimal
	won      decimal.Decimal
	lost     decimal.Decimal
	wins     int
	losses   int
	active   []domain.PositionEntry
	resolved []domain.PositionEntry
}

// BuildReport computes the full analytics output for one snapshot.
func BuildReport(snap domain.DecodedSnapshot) (domain.Report, Diagnostics) {
	var diag Diagnostics

	// Index markets by id for O(1) joins.
	markets := make(map[uint64]domain.Market, len(snap.Markets))
	for _, m := range snap.Markets {
		markets[m.ID] = m
	}
	races := make(map[uint64]domain.RaceMarket, len(snap.RaceMarkets))
	for _, m := range snap.RaceMarkets {
		races[m.ID] = m
	}
	names := make(map[domain.PublicKey]string, len(snap.Profiles))
	for _, p := range snap.Profiles {
		if p.DisplayName != "" {
			names[p.Owner] = p.DisplayName
		}
	}

	// Group positions by owner, preserving encounter order so leaderboard
	// ties stay stable.
	accums := make(map[domain.PublicKey]*agentAccum)
	var order []domain.PublicKey

	// Binary and race market ids live in separate keyspaces, so views are
	// keyed by (type, id).
	byMarket := make(map[viewKey][]domain.ParticipantEntry)
	var marketOrder []viewKey

	accumFor := func(owner domain.PublicKey) *agentAccum {
		acc, ok := accums[owner]
		if !ok {
			acc = &agentAccum{
				wallet:  owner,
				wagered: decimal.Zero,
				won:     decimal.Zero,
				lost:    decimal.Zero,
			}
			accums[owner] = acc
			order = append(order, owner)
		}
		return acc
	}

	for _, pos := range snap.Positions {
		m, ok := markets[pos.MarketID]
		if !ok {
			diag.DroppedPositions++
			continue
		}
		res := settle.Binary(m, pos)
		entry := domain.PositionEntry{
			MarketID:   m.ID,
			MarketType: domain.MarketTypeBinary,
			Question:   m.Question,
			Label:      string(pos.Side()),
			Wagered:    res.Wagered,
			Payout:     res.Payout,
			PnL:        res.PnL,
			Won:        res.Won,
			Settled:    m.Status.Settled(),
		}
		acc := accumFor(pos.Owner)
		acc.apply(entry)

		key := viewKey{t: domain.MarketTypeBinary, id: m.ID}
		if _, seen := byMarket[key]; !seen {
			marketOrder = append(marketOrder, key)
		}
		byMarket[key] = append(byMarket[key], domain.ParticipantEntry{
			Wallet:      pos.Owner,
			DisplayName: displayName(names, pos.Owner),
			Label:       entry.Label,
			Wagered:     entry.Wagered,
			PnL:         entry.PnL,
			Won:         entry.Won,
		})
	}

	for _, pos := range snap.RacePositions {
		m, ok := races[pos.MarketID]
		if !ok {
			diag.DroppedRaceBets += len(pos.Bets)
			continue
		}
		for _, bet := range pos.Bets {
			res, ok := settle.RaceBet(m, bet)
			if !ok {
				diag.DroppedRaceBets++
				continue
			}
			entry := domain.PositionEntry{
				MarketID:   m.ID,
				MarketType: domain.MarketTypeRace,
				Question:   m.Question,
				Label:      m.Outcomes[bet.OutcomeIndex].Label,
				Wagered:    res.Wagered,
				Payout:     res.Payout,
				PnL:        res.PnL,
				Won:        res.Won,
				Settled:    m.Status.Settled(),
			}
			acc := accumFor(pos.Owner)
			acc.apply(entry)

			key := viewKey{t: domain.MarketTypeRace, id: m.ID}
			if _, seen := byMarket[key]; !seen {
				marketOrder = append(marketOrder, key)
			}
			byMarket[key] = append(byMarket[key], domain.ParticipantEntry{
				Wallet:      pos.Owner,
				DisplayName: displayName(names, pos.Owner),
				Label:       entry.Label,
				Wagered:     entry.Wagered,
				PnL:         entry.PnL,
				Won:         entry.Won,
			})
		}
	}

	// Finalize per-agent stats.
	leaderboard := make([]domain.AgentStats, 0, len(order))
	totalWagered := decimal.Zero
	positions := 0
	for _, owner := range order {
		acc := accums[owner]
		stats := acc.finalize(displayName(names, owner))
		totalWagered = totalWagered.Add(stats.Wagered)
		positions += len(stats.ActivePos) + len(stats.ResolvedPos)
		leaderboard = append(leaderboard, stats)
	}

	// Rank by net realized P&L descending. The sort is stable and no
	// secondary key is applied: equal-P&L agents keep encounter order.
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].NetPnL.GreaterThan(leaderboard[j].NetPnL)
	})

	active, resolved := buildViews(markets, races, byMarket, marketOrder)

	return domain.Report{
		GeneratedAt:     time.Now().UTC(),
		Leaderboard:     leaderboard,
		ActiveMarkets:   active,
		ResolvedMarkets: resolved,
		Totals: domain.ReportTotals{
			Agents:       len(leaderboard),
			Markets:      len(snap.Markets),
			RaceMarkets:  len(snap.RaceMarkets),
			Positions:    positions,
			TotalWagered: totalWagered,
		},
	}, diag
}

// apply folds one settled-or-open entry into the running totals.
func (a *agentAccum) apply(e domain.PositionEntry) {
	a.wagered = a.wagered.Add(e.Wagered)
	if !e.Settled {
		a.active = append(a.active, e)
		return
	}
	a.resolved = append(a.resolved, e)
	if e.Won == nil {
		// Settled without a committed winner (voided/disputed): the wager
		// counts toward the resolved sum but decides nothing.
		return
	}
	if *e.Won {
		a.wins++
		a.won = a.won.Add(e.Payout)
	} else {
		a.losses++
		a.lost = a.lost.Add(e.Wagered)
	}
}

// finalize computes the derived fields. Net P&L is recomputed in a second
// pass strictly from wagers on resolved positions, so open-position estimates
// never leak into the realized figure used for ranking.
func (a *agentAccum) finalize(name string) domain.AgentStats {
	// Most-recent first; market ids are monotonically increasing and are the
	// only totally-ordered recency proxy available.
	sort.SliceStable(a.resolved, func(i, j int) bool {
		return a.resolved[i].MarketID > a.resolved[j].MarketID
	})

	resolvedWagered := decimal.Zero
	for _, e := range a.resolved {
		resolvedWagered = resolvedWagered.Add(e.Wagered)
	}
	net := a.won.Sub(resolvedWagered)

	decided := a.wins + a.losses
	accuracy := 0.0
	if decided > 0 {
		accuracy = float64(a.wins) / float64(decided)
	}

	return domain.AgentStats{
		Wallet:      a.wallet,
		DisplayName: name,
		Wagered:     a.wagered,
		Won:         a.won,
		Lost:        a.lost,
		NetPnL:      net,
		Open:        len(a.active),
		Resolved:    len(a.resolved),
		Wins:        a.wins,
		Losses:      a.losses,
		Accuracy:    accuracy,
		Streak:      streak(a.resolved),
		ActivePos:   a.active,
		ResolvedPos: a.resolved,
	}
}

// streak counts consecutive same-result entries from the front of the
// most-recent-first resolved list: positive for wins, negative for losses,
// zero when nothing has a decided result.
func streak(resolved []domain.PositionEntry) int {
	n := 0
	var first bool
	for _, e := range resolved {
		if e.Won == nil {
			continue
		}
		if n == 0 {
			first = *e.Won
			n = 1
			continue
		}
		if *e.Won != first {
			break
		}
		n++
	}
	if n > 0 && !first {
		return -n
	}
	return n
}

// viewKey identifies a market view across the two id keyspaces.
type viewKey struct {
	t  domain.MarketType
	id uint64
}

// buildViews assembles the active and resolved MarketView lists, each sorted
// by total pool descending, with participants sorted by wagered descending.
func buildViews(
	markets map[uint64]domain.Market,
	races map[uint64]domain.RaceMarket,
	byMarket map[viewKey][]domain.ParticipantEntry,
	marketOrder []viewKey,
) (active, resolved []domain.MarketView) {
	for _, key := range marketOrder {
		participants := byMarket[key]
		sort.SliceStable(participants, func(i, j int) bool {
			return participants[i].Wagered.GreaterThan(participants[j].Wagered)
		})

		var view domain.MarketView
		if key.t == domain.MarketTypeBinary {
			m := markets[key.id]
			view = domain.MarketView{
				MarketID:     m.ID,
				Question:     m.Question,
				Status:       m.Status,
				Type:         domain.MarketTypeBinary,
				TotalPool:    m.TotalPool(),
				Participants: participants,
				YesPercent:   m.YesPercent,
				NoPercent:    m.NoPercent,
				Winner:       m.Winner,
			}
		} else {
			rm := races[key.id]
			view = domain.MarketView{
				MarketID:     rm.ID,
				Question:     rm.Question,
				Status:       rm.Status,
				Type:         domain.MarketTypeRace,
				TotalPool:    rm.TotalPool,
				Participants: participants,
				Outcomes:     rm.Outcomes,
				WinnerIndex:  rm.WinnerIndex,
			}
		}

		if view.Status.Settled() {
			resolved = append(resolved, view)
		} else {
			active = append(active, view)
		}
	}

	sortByPool := func(views []domain.MarketView) {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].TotalPool.GreaterThan(views[j].TotalPool)
		})
	}
	sortByPool(active)
	sortByPool(resolved)
	return active, resolved
}

func displayName(names map[domain.PublicKey]string, wallet domain.PublicKey) string {
	if name, ok := names[wallet]; ok {
		return name
	}
	return wallet.Short()
}
