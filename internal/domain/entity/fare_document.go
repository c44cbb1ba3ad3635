// internal/domain/entity/fare_document.go
package entity

import "encoding/xml"

// FareDocument is one parsed fare-search response file.
type FareDocument struct {
	XMLName      xml.Name          `xml:"AirFareSearchResponse"`
	RequestTime  string            `xml:"RequestTime,attr"`
	ResponseTime string            `xml:"ResponseTime,attr"`
	RequestID    string            `xml:"RequestId"`
	Itineraries  []PricedItinerary `xml:"PricedItineraries>Flights"`

	// Set by the loader, not present in the markup.
	FilePath string `xml:"-"`
}

// PricedItinerary is one priced offer: pricing plus up to two legs.
// Either leg may be absent; an itinerary with neither leg describes a
// single flight directly.
type PricedItinerary struct {
	Pricing Pricing `xml:"Pricing"`
	Onward  *Leg    `xml:"OnwardPricedItinerary"`
	Return  *Leg    `xml:"ReturnPricedItinerary"`
}

// Pricing carries the currency and the charge lines of an itinerary.
// A single <ServiceCharges> element and a list of them both decode
// into the slice, so downstream code never branches on cardinality.
type Pricing struct {
	Currency string   `xml:"currency,attr"`
	Charges  []Charge `xml:"ServiceCharges"`
}

// Charge is one priced line item. Amount stays textual until the
// ranker explodes it; the encoding contract forbids '/' and '|' in it.
type Charge struct {
	Type       string `xml:"type,attr"`
	ChargeType string `xml:"ChargeType,attr"`
	Amount     string `xml:",chardata"`
}

// Leg is the onward or return direction of an itinerary.
type Leg struct {
	Segments []FlightSegment `xml:"Flights>Flight"`
}

// FlightSegment is one flown hop.
type FlightSegment struct {
	Carrier            Carrier `xml:"Carrier"`
	FlightNumber       string  `xml:"FlightNumber"`
	Source             string  `xml:"Source"`
	Destination        string  `xml:"Destination"`
	DepartureTimeStamp string  `xml:"DepartureTimeStamp"`
	ArrivalTimeStamp   string  `xml:"ArrivalTimeStamp"`
	Class              string  `xml:"Class"`
	NumberOfStops      string  `xml:"NumberOfStops"`
	FareBasis          string  `xml:"FareBasis"`
	WarningText        string  `xml:"WarningText"`
	TicketType         string  `xml:"TicketType"`
}

// Carrier is the airline identifier with its display text.
type Carrier struct {
	ID   string `xml:"id,attr"`
	Text string `xml:",chardata"`
}
