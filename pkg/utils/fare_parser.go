package utils

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"avias-service/internal/domain/entity"
	"avias-service/pkg/logger"
)

// Timestamp layouts seen across fare-search responses. Request and
// response times come as "28-09-2015 20:23:49", segment times as
// "2015-10-22T0040"; RFC3339 variants are tolerated.
var timeStampLayouts = []string{
	"2006-01-02T1504",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// FareParser parses fare-search response documents
type FareParser struct {
	logger logger.Logger
}

// NewFareParser creates a new fare parser
func NewFareParser(logger logger.Logger) *FareParser {
	return &FareParser{
		logger: logger,
	}
}

// ParseDocument decodes one fare-search response. Singular and plural
// charge and flight elements both land in slices during decoding, so
// callers never see the cardinality of the source markup.
func (p *FareParser) ParseDocument(data []byte, path string) (*entity.FareDocument, error) {
	var doc entity.FareDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if strings.TrimSpace(doc.RequestID) == "" {
		return nil, fmt.Errorf("decode %s: missing RequestId", path)
	}
	if doc.Itineraries == nil {
		return nil, fmt.Errorf("decode %s: missing PricedItineraries", path)
	}
	doc.FilePath = path

	p.logger.Debug("Parsed fare document",
		"path", path,
		"requestId", doc.RequestID,
		"itineraries", len(doc.Itineraries))

	return &doc, nil
}

// ParseTimeStamp parses timestamp text into an instant. Empty or
// unparseable text yields nil, never a zero time.
func ParseTimeStamp(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range timeStampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return &ts
		}
	}
	return nil
}
