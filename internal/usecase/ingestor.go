package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"avias-service/internal/domain/entity"
	"avias-service/internal/domain/repository"
	"avias-service/pkg/logger"
	"avias-service/pkg/metrics"
	"avias-service/pkg/utils"
)

// Ingestor flattens fare-search response documents into the published
// flight snapshot and reports the distinct route endpoints.
type Ingestor struct {
	parser    *utils.FareParser
	snapshots repository.SnapshotRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewIngestor creates a new ingestor. metrics may be nil.
func NewIngestor(parser *utils.FareParser, snapshots repository.SnapshotRepository, logger logger.Logger, metrics *metrics.Metrics) *Ingestor {
	return &Ingestor{
		parser:    parser,
		snapshots: snapshots,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ingest processes every .xml document under dataFolder, publishes the
// flattened snapshot and returns the distinct source and destination
// values. Any parse or structural failure aborts the whole run: it is
// logged in full, nothing is published, and empty sets come back so
// the options form simply offers no choices.
func (i *Ingestor) Ingest(ctx context.Context, dataFolder string) entity.RouteOptions {
	options, err := i.ingest(ctx, dataFolder)
	if err != nil {
		i.logger.Error("Ingestion failed", "folder", dataFolder, "error", err)
		if i.metrics != nil {
			i.metrics.ErrorsCount.WithLabelValues("ingest").Inc()
		}
		return entity.EmptyRouteOptions()
	}
	return options
}

func (i *Ingestor) ingest(ctx context.Context, dataFolder string) (entity.RouteOptions, error) {
	paths, err := i.discoverDocuments(dataFolder)
	if err != nil {
		return entity.RouteOptions{}, err
	}
	if len(paths) == 0 {
		// Non-fatal: an empty capability set is a valid answer. A
		// previously published snapshot stays as it is.
		i.logger.Warn("no fare documents found", "folder", dataFolder)
		return entity.EmptyRouteOptions(), nil
	}

	var records []entity.FlatFlightRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return entity.RouteOptions{}, fmt.Errorf("read %s: %w", path, err)
		}
		doc, err := i.parser.ParseDocument(data, path)
		if err != nil {
			return entity.RouteOptions{}, err
		}
		records = append(records, flattenDocument(doc)...)
		if i.metrics != nil {
			i.metrics.DocumentsParsed.Inc()
		}
	}

	deriveTemporal(records)

	if err := i.snapshots.Publish(ctx, records); err != nil {
		return entity.RouteOptions{}, err
	}
	if i.metrics != nil {
		i.metrics.RecordsFlattened.Add(float64(len(records)))
	}

	options := collectRouteOptions(records)
	i.logger.Info("Ingestion complete",
		"documents", len(paths),
		"records", len(records),
		"sources", len(options.Sources),
		"destinations", len(options.Destinations))
	return options, nil
}

// discoverDocuments lists the .xml files of the data folder in name
// order, which fixes the row order of the snapshot.
func (i *Ingestor) discoverDocuments(dataFolder string) ([]string, error) {
	entries, err := os.ReadDir(dataFolder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dataFolder, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		paths = append(paths, filepath.Join(dataFolder, entry.Name()))
	}
	return paths, nil
}

// flattenDocument emits one record per segment of each leg, in
// itinerary order then onward-before-return leg order. An itinerary
// with neither leg emits exactly one record carrying only the
// document and pricing fields.
func flattenDocument(doc *entity.FareDocument) []entity.FlatFlightRecord {
	var records []entity.FlatFlightRecord
	for idx := range doc.Itineraries {
		itinerary := &doc.Itineraries[idx]
		base := entity.FlatFlightRecord{
			RequestTime:     strings.TrimSpace(doc.RequestTime),
			ResponseTime:    strings.TrimSpace(doc.ResponseTime),
			RequestID:       strings.TrimSpace(doc.RequestID),
			XMLFilePath:     doc.FilePath,
			PricingCurrency: strings.TrimSpace(itinerary.Pricing.Currency),
			Pricing:         entity.EncodeCharges(trimCharges(itinerary.Pricing.Charges)),
		}

		emitted := false
		for _, leg := range []*entity.Leg{itinerary.Onward, itinerary.Return} {
			if leg == nil {
				continue
			}
			for segIdx := range leg.Segments {
				records = append(records, segmentRecord(base, &leg.Segments[segIdx]))
				emitted = true
			}
		}
		if !emitted {
			records = append(records, base)
		}
	}
	return records
}

func segmentRecord(base entity.FlatFlightRecord, seg *entity.FlightSegment) entity.FlatFlightRecord {
	rec := base
	rec.Carrier = strings.TrimSpace(seg.Carrier.ID) + "/" + strings.TrimSpace(seg.Carrier.Text)
	rec.FlightNumber = strings.TrimSpace(seg.FlightNumber)
	rec.Source = strings.TrimSpace(seg.Source)
	rec.Destination = strings.TrimSpace(seg.Destination)
	rec.DepartureTimeStamp = strings.TrimSpace(seg.DepartureTimeStamp)
	rec.ArrivalTimeStamp = strings.TrimSpace(seg.ArrivalTimeStamp)
	rec.Class = strings.TrimSpace(seg.Class)
	rec.NumberOfStops = strings.TrimSpace(seg.NumberOfStops)
	rec.FareBasis = strings.TrimSpace(seg.FareBasis)
	rec.WarningText = strings.TrimSpace(seg.WarningText)
	rec.TicketType = strings.TrimSpace(seg.TicketType)
	return rec
}

func trimCharges(charges []entity.Charge) []entity.Charge {
	trimmed := make([]entity.Charge, len(charges))
	for i, c := range charges {
		trimmed[i] = entity.Charge{
			Type:       strings.TrimSpace(c.Type),
			ChargeType: strings.TrimSpace(c.ChargeType),
			Amount:     strings.TrimSpace(c.Amount),
		}
	}
	return trimmed
}

// deriveTemporal fills the parsed-instant columns and the duration.
// Unparseable text stays nil rather than becoming a zero time.
func deriveTemporal(records []entity.FlatFlightRecord) {
	for i := range records {
		rec := &records[i]
		rec.RequestTS = utils.ParseTimeStamp(rec.RequestTime)
		rec.ResponseTS = utils.ParseTimeStamp(rec.ResponseTime)
		rec.DepartureTS = utils.ParseTimeStamp(rec.DepartureTimeStamp)
		rec.ArrivalTS = utils.ParseTimeStamp(rec.ArrivalTimeStamp)
		if rec.DepartureTS != nil && rec.ArrivalTS != nil {
			delta := rec.ArrivalTS.Sub(*rec.DepartureTS)
			rec.TimeDelta = &delta
		}
	}
}

func collectRouteOptions(records []entity.FlatFlightRecord) entity.RouteOptions {
	options := entity.EmptyRouteOptions()
	for i := range records {
		if records[i].Source != "" {
			options.Sources[records[i].Source] = struct{}{}
		}
		if records[i].Destination != "" {
			options.Destinations[records[i].Destination] = struct{}{}
		}
	}
	return options
}
