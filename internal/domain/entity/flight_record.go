// internal/domain/entity/flight_record.go
package entity

import (
	"fmt"
	"strings"
	"time"
)

// FlatFlightRecord is one row of the published snapshot: one priced
// flight segment (or the bare itinerary when no leg is present) with
// the owning document's fields copied in. Immutable once built.
type FlatFlightRecord struct {
	RequestTime     string
	ResponseTime    string
	RequestID       string
	XMLFilePath     string
	PricingCurrency string
	// Charge lines serialized as type/chargeType/amount joined by '|'.
	Pricing string

	// Carrier id and display text collapsed into one "id/text" field.
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

	// Derived. Nil means the source text was empty or unparseable.
	RequestTS   *time.Time
	ResponseTS  *time.Time
	DepartureTS *time.Time
	ArrivalTS   *time.Time
	TimeDelta   *time.Duration
}

// FlightVariation is one display row of the variations listing: the
// matching flights of a route with their raw pricing string, before
// any explosion or ranking.
type FlightVariation struct {
	FlightNumber       string
	Source             string
	Destination        string
	DepartureTimeStamp string
	ArrivalTimeStamp   string
	Class              string
	NumberOfStops      string
	TicketType         string
	Pricing            string
}

// EncodeCharges serializes charge lines into the snapshot's pricing
// field. The encoding must be reversible by DecodeCharges, so amounts
// may not contain '/' or '|'.
func EncodeCharges(charges []Charge) string {
	parts := make([]string, 0, len(charges))
	for _, c := range charges {
		parts = append(parts, c.Type+"/"+c.ChargeType+"/"+c.Amount)
	}
	return strings.Join(parts, "|")
}

// DecodeCharges reverses EncodeCharges. An empty field decodes to no
// charges; a segment that does not split into exactly three parts is
// malformed pricing data.
func DecodeCharges(encoded string) ([]Charge, error) {
	if encoded == "" {
		return nil, nil
	}
	segments := strings.Split(encoded, "|")
	charges := make([]Charge, 0, len(segments))
	for _, seg := range segments {
		fields := strings.Split(seg, "/")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed pricing segment %q", seg)
		}
		charges = append(charges, Charge{Type: fields[0], ChargeType: fields[1], Amount: fields[2]})
	}
	return charges, nil
}
