package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"avias-service/internal/domain/entity"
	"avias-service/internal/domain/repository"
	"avias-service/pkg/logger"

	"github.com/google/uuid"
)

const (
	snapshotFileName = "flights_df.tsv"
	chargeFileName   = "flights_price_df.tsv"
)

var snapshotHeader = []string{
	"RequestTime", "ResponseTime", "RequestId", "XmlFilePath",
	"PricingCurrency", "Pricing", "Carrier", "FlightNumber", "Source",
	"Destination", "DepartureTimeStamp", "ArrivalTimeStamp", "Class",
	"NumberOfStops", "FareBasis", "WarningText", "TicketType",
	"RequestTimeTs", "ResponseTimeTs", "DepartureTimeStampTs",
	"ArrivalTimeStampTs", "TimeDelta",
}

var chargeHeader = []string{
	"RequestTime", "ResponseTime", "RequestId", "XmlFilePath",
	"PricingCurrency", "Carrier", "FlightNumber", "Source",
	"Destination", "DepartureTimeStamp", "ArrivalTimeStamp", "Class",
	"NumberOfStops", "FareBasis", "WarningText", "TicketType",
	"PricingType", "PricingChargeType", "PricingCost",
	"DepartureTimeStampTs", "ArrivalTimeStampTs", "TimeDiff",
}

// TSVSnapshotRepository implements SnapshotRepository on tab-separated
// flat files under the tmp folder. Publication is copy-on-write: rows
// go to a uniquely named temp file which is renamed over the snapshot,
// so concurrent readers always see a complete table.
type TSVSnapshotRepository struct {
	tmpFolder string
	logger    logger.Logger
}

// NewTSVSnapshotRepository creates a new snapshot repository rooted at
// the given tmp folder
func NewTSVSnapshotRepository(tmpFolder string, logger logger.Logger) repository.SnapshotRepository {
	return &TSVSnapshotRepository{
		tmpFolder: tmpFolder,
		logger:    logger,
	}
}

// SnapshotPath returns the location of the published flight table.
func (r *TSVSnapshotRepository) SnapshotPath() string {
	return filepath.Join(r.tmpFolder, snapshotFileName)
}

// Publish atomically replaces the published snapshot with the given
// rows.
func (r *TSVSnapshotRepository) Publish(ctx context.Context, records []entity.FlatFlightRecord) error {
	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, flatRecordRow(&records[i]))
	}
	if err := r.writeTable(snapshotFileName, snapshotHeader, rows); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	r.logger.Info("Published flight snapshot", "rows", len(records), "path", r.SnapshotPath())
	return nil
}

// Load reads the published snapshot back into typed records. Returns
// entity.ErrSnapshotMissing when no snapshot has been published.
func (r *TSVSnapshotRepository) Load(ctx context.Context) ([]entity.FlatFlightRecord, error) {
	f, err := os.Open(r.SnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrSnapshotMissing
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = len(snapshotHeader)

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	records := make([]entity.FlatFlightRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		records = append(records, parseFlatRecord(line))
	}
	return records, nil
}

// WriteChargeTable persists the exploded charge rows of one rank query
// as a side artifact for inspection.
func (r *TSVSnapshotRepository) WriteChargeTable(ctx context.Context, records []entity.PricedChargeRecord) error {
	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, chargeRecordRow(&records[i]))
	}
	if err := r.writeTable(chargeFileName, chargeHeader, rows); err != nil {
		return fmt.Errorf("write charge table: %w", err)
	}
	return nil
}

// writeTable writes header+rows to a temp file and renames it into
// place. Rename is atomic for same-filesystem paths, which both are.
func (r *TSVSnapshotRepository) writeTable(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(r.tmpFolder, 0o755); err != nil {
		return err
	}
	tmpPath := filepath.Join(r.tmpFolder, name+"."+uuid.NewString()+".tmp")

	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(f)
	writer.Comma = '\t'
	writer.Write(header)
	for _, row := range rows {
		writer.Write(row)
	}
	writer.Flush()

	if err := writer.Error(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(r.tmpFolder, name)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func flatRecordRow(rec *entity.FlatFlightRecord) []string {
	return []string{
		rec.RequestTime, rec.ResponseTime, rec.RequestID, rec.XMLFilePath,
		rec.PricingCurrency, rec.Pricing, rec.Carrier, rec.FlightNumber,
		rec.Source, rec.Destination, rec.DepartureTimeStamp,
		rec.ArrivalTimeStamp, rec.Class, rec.NumberOfStops, rec.FareBasis,
		rec.WarningText, rec.TicketType,
		formatInstant(rec.RequestTS), formatInstant(rec.ResponseTS),
		formatInstant(rec.DepartureTS), formatInstant(rec.ArrivalTS),
		formatDuration(rec.TimeDelta),
	}
}

func parseFlatRecord(line []string) entity.FlatFlightRecord {
	return entity.FlatFlightRecord{
		RequestTime:        line[0],
		ResponseTime:       line[1],
		RequestID:          line[2],
		XMLFilePath:        line[3],
		PricingCurrency:    line[4],
		Pricing:            line[5],
		Carrier:            line[6],
		FlightNumber:       line[7],
		Source:             line[8],
		Destination:        line[9],
		DepartureTimeStamp: line[10],
		ArrivalTimeStamp:   line[11],
		Class:              line[12],
		NumberOfStops:      line[13],
		FareBasis:          line[14],
		WarningText:        line[15],
		TicketType:         line[16],
		RequestTS:          parseInstant(line[17]),
		ResponseTS:         parseInstant(line[18]),
		DepartureTS:        parseInstant(line[19]),
		ArrivalTS:          parseInstant(line[20]),
		TimeDelta:          parseDuration(line[21]),
	}
}

func chargeRecordRow(rec *entity.PricedChargeRecord) []string {
	return []string{
		rec.RequestTime, rec.ResponseTime, rec.RequestID, rec.XMLFilePath,
		rec.PricingCurrency, rec.Carrier, rec.FlightNumber, rec.Source,
		rec.Destination, rec.DepartureTimeStamp, rec.ArrivalTimeStamp,
		rec.Class, rec.NumberOfStops, rec.FareBasis, rec.WarningText,
		rec.TicketType, rec.ChargeType, rec.ChargeSubType,
		strconv.FormatFloat(rec.Cost, 'f', -1, 64),
		formatInstant(rec.DepartureTS), formatInstant(rec.ArrivalTS),
		formatDuration(rec.TimeDelta),
	}
}

// Instants persist as epoch seconds, durations as whole seconds; an
// empty cell stands for "no value".

func formatInstant(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return strconv.FormatInt(ts.Unix(), 10)
}

func parseInstant(cell string) *time.Time {
	if cell == "" {
		return nil
	}
	secs, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return nil
	}
	ts := time.Unix(secs, 0).UTC()
	return &ts
}

func formatDuration(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return strconv.FormatInt(int64(d.Seconds()), 10)
}

func parseDuration(cell string) *time.Duration {
	if cell == "" {
		return nil
	}
	secs, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}
