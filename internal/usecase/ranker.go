package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"avias-service/internal/domain/entity"
	"avias-service/internal/domain/repository"
	"avias-service/pkg/logger"
	"avias-service/pkg/metrics"
)

// Ranker answers one origin/destination query against the published
// snapshot: cheapest, most expensive, fastest, slowest, and a combined
// price/duration "best" pick.
type Ranker struct {
	snapshots repository.SnapshotRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewRanker creates a new ranker. metrics may be nil.
func NewRanker(snapshots repository.SnapshotRepository, logger logger.Logger, metrics *metrics.Metrics) *Ranker {
	return &Ranker{
		snapshots: snapshots,
		logger:    logger,
		metrics:   metrics,
	}
}

// Rank computes the five labeled tables for the given pair. Matching
// is exact and case-sensitive. An empty match yields five empty tables
// and no error; a missing snapshot or malformed pricing data fails the
// query.
func (r *Ranker) Rank(ctx context.Context, source, destination string) (*entity.RankResult, error) {
	started := time.Now()
	result, err := r.rank(ctx, source, destination)
	if r.metrics != nil {
		r.metrics.RankQueries.Inc()
		r.metrics.RankDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			r.metrics.ErrorsCount.WithLabelValues("rank").Inc()
		}
	}
	return result, err
}

func (r *Ranker) rank(ctx context.Context, source, destination string) (*entity.RankResult, error) {
	records, err := r.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	var matched []entity.FlatFlightRecord
	for i := range records {
		if records[i].Source == source && records[i].Destination == destination {
			matched = append(matched, records[i])
		}
	}

	exploded, err := explodeCharges(matched)
	if err != nil {
		return nil, err
	}

	// Side artifact for inspection; the published snapshot stays the
	// system of record.
	if err := r.snapshots.WriteChargeTable(ctx, exploded); err != nil {
		r.logger.Warn("Failed to write charge table artifact", "error", err)
	}

	// Only the total-amount charge line is comparable across flights.
	var totals []entity.PricedChargeRecord
	for i := range exploded {
		if exploded[i].ChargeSubType == entity.TotalAmountChargeType {
			totals = append(totals, exploded[i])
		}
	}

	result := &entity.RankResult{
		MinPrice:    keyByFlightNumber(extremeByCost(totals, true)),
		MaxPrice:    keyByFlightNumber(extremeByCost(totals, false)),
		MinDuration: keyByFlightNumber(extremeByDuration(totals, true)),
		MaxDuration: keyByFlightNumber(extremeByDuration(totals, false)),
		Best:        keyByFlightNumber(bestByCostAndDuration(totals)),
	}

	r.logger.Info("Rank query answered",
		"source", source,
		"destination", destination,
		"matched", len(matched),
		"totalAmountRows", len(totals))
	return result, nil
}

// Variations lists every snapshot row matching the pair, with the raw
// pricing string, for the variations page. Unlike Rank it involves no
// explosion, so malformed pricing cannot fail it.
func (r *Ranker) Variations(ctx context.Context, source, destination string) ([]entity.FlightVariation, error) {
	records, err := r.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []entity.FlightVariation
	for i := range records {
		rec := &records[i]
		if rec.Source != source || rec.Destination != destination {
			continue
		}
		out = append(out, entity.FlightVariation{
			FlightNumber:       rec.FlightNumber,
			Source:             rec.Source,
			Destination:        rec.Destination,
			DepartureTimeStamp: rec.DepartureTimeStamp,
			ArrivalTimeStamp:   rec.ArrivalTimeStamp,
			Class:              rec.Class,
			NumberOfStops:      rec.NumberOfStops,
			TicketType:         rec.TicketType,
			Pricing:            rec.Pricing,
		})
	}
	return out, nil
}

// explodeCharges turns each matched row into one row per charge line.
// Non-numeric amounts fail the query outright.
func explodeCharges(records []entity.FlatFlightRecord) ([]entity.PricedChargeRecord, error) {
	var exploded []entity.PricedChargeRecord
	for i := range records {
		rec := &records[i]
		charges, err := entity.DecodeCharges(rec.Pricing)
		if err != nil {
			return nil, fmt.Errorf("%w: %v (flight %q)", entity.ErrMalformedPricing, err, rec.FlightNumber)
		}
		for _, charge := range charges {
			cost, err := strconv.ParseFloat(charge.Amount, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: amount %q (flight %q)", entity.ErrMalformedPricing, charge.Amount, rec.FlightNumber)
			}
			exploded = append(exploded, pricedChargeRecord(rec, charge, cost))
		}
	}
	return exploded, nil
}

func pricedChargeRecord(rec *entity.FlatFlightRecord, charge entity.Charge, cost float64) entity.PricedChargeRecord {
	out := entity.PricedChargeRecord{
		RequestTime:        rec.RequestTime,
		ResponseTime:       rec.ResponseTime,
		RequestID:          rec.RequestID,
		XMLFilePath:        rec.XMLFilePath,
		PricingCurrency:    rec.PricingCurrency,
		Carrier:            rec.Carrier,
		FlightNumber:       rec.FlightNumber,
		Source:             rec.Source,
		Destination:        rec.Destination,
		DepartureTimeStamp: rec.DepartureTimeStamp,
		ArrivalTimeStamp:   rec.ArrivalTimeStamp,
		Class:              rec.Class,
		NumberOfStops:      rec.NumberOfStops,
		FareBasis:          rec.FareBasis,
		WarningText:        rec.WarningText,
		TicketType:         rec.TicketType,
		ChargeType:         charge.Type,
		ChargeSubType:      charge.ChargeType,
		Cost:               cost,
		DepartureTS:        rec.DepartureTS,
		ArrivalTS:          rec.ArrivalTS,
	}
	// Recomputed here rather than copied, so the exploded table never
	// depends on the snapshot's derived column.
	if out.DepartureTS != nil && out.ArrivalTS != nil {
		delta := out.ArrivalTS.Sub(*out.DepartureTS)
		out.TimeDelta = &delta
	}
	return out
}

// extremeByCost returns every row whose cost equals the global
// minimum (or maximum), in their original order.
func extremeByCost(rows []entity.PricedChargeRecord, min bool) []entity.PricedChargeRecord {
	if len(rows) == 0 {
		return nil
	}
	extreme := rows[0].Cost
	for i := range rows {
		if (min && rows[i].Cost < extreme) || (!min && rows[i].Cost > extreme) {
			extreme = rows[i].Cost
		}
	}
	var out []entity.PricedChargeRecord
	for i := range rows {
		if rows[i].Cost == extreme {
			out = append(out, rows[i])
		}
	}
	return out
}

// extremeByDuration is the duration analogue, restricted to rows with
// a defined duration.
func extremeByDuration(rows []entity.PricedChargeRecord, min bool) []entity.PricedChargeRecord {
	var extreme *time.Duration
	for i := range rows {
		if !rows[i].HasDuration() {
			continue
		}
		d := *rows[i].TimeDelta
		if extreme == nil || (min && d < *extreme) || (!min && d > *extreme) {
			extreme = &d
		}
	}
	if extreme == nil {
		return nil
	}
	var out []entity.PricedChargeRecord
	for i := range rows {
		if rows[i].HasDuration() && *rows[i].TimeDelta == *extreme {
			out = append(out, rows[i])
		}
	}
	return out
}

// bestByCostAndDuration surfaces flights near the knee of the
// price/duration trade-off: the two rows straddling the median of the
// cost-first ordering united with the two straddling the median of the
// duration-first ordering. With fewer than four candidates the whole
// candidate set comes back, cheapest first.
func bestByCostAndDuration(rows []entity.PricedChargeRecord) []entity.PricedChargeRecord {
	var candidates []int
	for i := range rows {
		if rows[i].HasDuration() {
			candidates = append(candidates, i)
		}
	}

	costFirst := func(a, b int) bool {
		if rows[a].Cost != rows[b].Cost {
			return rows[a].Cost < rows[b].Cost
		}
		return *rows[a].TimeDelta < *rows[b].TimeDelta
	}
	durationFirst := func(a, b int) bool {
		if *rows[a].TimeDelta != *rows[b].TimeDelta {
			return *rows[a].TimeDelta < *rows[b].TimeDelta
		}
		return rows[a].Cost < rows[b].Cost
	}

	byCost := append([]int(nil), candidates...)
	sort.SliceStable(byCost, func(x, y int) bool { return costFirst(byCost[x], byCost[y]) })

	if len(candidates) < 4 {
		out := make([]entity.PricedChargeRecord, 0, len(byCost))
		for _, idx := range byCost {
			out = append(out, rows[idx])
		}
		return out
	}

	byDuration := append([]int(nil), candidates...)
	sort.SliceStable(byDuration, func(x, y int) bool { return durationFirst(byDuration[x], byDuration[y]) })

	mid := len(candidates) / 2
	picks := []int{byCost[mid-1], byCost[mid], byDuration[mid-1], byDuration[mid]}

	seen := map[int]struct{}{}
	var out []entity.PricedChargeRecord
	for _, idx := range picks {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, rows[idx])
	}
	return out
}

// keyByFlightNumber projects rows onto the display columns, keeping
// the first occurrence of each flight number in the established order.
func keyByFlightNumber(rows []entity.PricedChargeRecord) []entity.FlightOption {
	seen := map[string]struct{}{}
	var out []entity.FlightOption
	for i := range rows {
		rec := &rows[i]
		if _, dup := seen[rec.FlightNumber]; dup {
			continue
		}
		seen[rec.FlightNumber] = struct{}{}
		out = append(out, entity.FlightOption{
			FlightNumber:       rec.FlightNumber,
			Source:             rec.Source,
			Destination:        rec.Destination,
			DepartureTimeStamp: rec.DepartureTimeStamp,
			ArrivalTimeStamp:   rec.ArrivalTimeStamp,
			Class:              rec.Class,
			NumberOfStops:      rec.NumberOfStops,
			TicketType:         rec.TicketType,
			Cost:               rec.Cost,
			ChargeType:         rec.ChargeType,
			ChargeSubType:      rec.ChargeSubType,
			TimeDelta:          rec.TimeDelta,
		})
	}
	return out
}
