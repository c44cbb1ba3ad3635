// internal/domain/entity/priced_charge.go
package entity

import "time"

// TotalAmountChargeType is the charge sub-type treated as the
// comparable total cost of an itinerary. Other charge lines (taxes,
// surcharges) are kept in the exploded table but never ranked.
const TotalAmountChargeType = "TotalAmount"

// PricedChargeRecord is one exploded row: a FlatFlightRecord paired
// with a single charge line, the aggregate pricing string replaced by
// the three scalar charge fields. Owned by one rank query.
type PricedChargeRecord struct {
	RequestTime     string
	ResponseTime    string
	RequestID       string
	XMLFilePath     string
	PricingCurrency string

	Carrier            string
	FlightNumber       string
	Source             string
	Destination        string
	DepartureTimeStamp string
	ArrivalTimeStamp   string
	Class              string
	NumberOfStops      string
	FareBasis          string
	WarningText        string
	TicketType         string

	ChargeType    string
	ChargeSubType string
	Cost          float64

	DepartureTS *time.Time
	ArrivalTS   *time.Time
	// Recomputed from the two instants; nil when either is missing.
	TimeDelta *time.Duration
}

// HasDuration reports whether the row can take part in comparisons
// that use the flight duration.
func (r *PricedChargeRecord) HasDuration() bool {
	return r.TimeDelta != nil
}

// FlightOption is one display row of a ranked table, restricted to the
// columns the result pages show.
type FlightOption struct {
	FlightNumber       string
	Source             string
	Destination        string
	DepartureTimeStamp string
	ArrivalTimeStamp   string
	Class              string
	NumberOfStops      string
	TicketType         string
	Cost               float64
	ChargeType         string
	ChargeSubType      string
	TimeDelta          *time.Duration
}

// RankResult holds the five labeled tables of a rank query, each keyed
// by flight number (first occurrence in sort order wins).
type RankResult struct {
	MinPrice    []FlightOption
	MaxPrice    []FlightOption
	MinDuration []FlightOption
	MaxDuration []FlightOption
	Best        []FlightOption
}
