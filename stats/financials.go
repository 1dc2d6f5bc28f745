package stats

import "agency-stats/domain/timerecord"

// safeDiv divides and substitutes 0 for a non-positive denominator. Every
// ratio in the engine goes through here or safePct: report cells feed numeric
// display directly, so NaN or Inf must never escape.
func safeDiv(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

func safePct(num, den float64) float64 {
	return safeDiv(num, den) * 100
}

// EnrichFinancials fills the financial metric set on each row according to the
// batch schema. Tiers never mix within one run: full per-record financials win,
// otherwise rate-derived revenue, otherwise everything stays 0. The derivation
// works off sums captured during aggregation, so calling it again (or on
// already enriched rows) just recomputes the same values.
func EnrichFinancials(rows []Row, schema timerecord.Schema) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		switch schema {
		case timerecord.SchemaFullFinancials:
			r.Revenue = r.fin.fee
			r.TotalCost = r.fin.cost
			r.TotalProfit = r.fin.profit
		case timerecord.SchemaRateOnly:
			r.Revenue = r.fin.rateRevenue
			r.TotalCost = 0
			r.TotalProfit = 0
		default:
			r.Revenue = 0
			r.TotalCost = 0
			r.TotalProfit = 0
		}
		r.BillableRate = safeDiv(r.Revenue, r.BillableHours)
		r.EffectiveRate = safeDiv(r.Revenue, r.HoursWorked)
		// Profit may be negative; a negative margin is valid output.
		r.ProfitMarginPct = safePct(r.TotalProfit, r.Revenue)
		out[i] = r
	}
	return out
}

// EnrichMonths applies EnrichFinancials to a monthly rollup.
func EnrichMonths(rows []MonthRow, schema timerecord.Schema) []MonthRow {
	out := make([]MonthRow, len(rows))
	for i, m := range rows {
		m.Row = EnrichFinancials([]Row{m.Row}, schema)[0]
		out[i] = m
	}
	return out
}
