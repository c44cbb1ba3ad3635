package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avias-service/internal/domain/entity"
	"avias-service/internal/interface/repository"
	"avias-service/pkg/logger"
	"avias-service/pkg/utils"
)

func segmentXML(flightNumber, source, destination, departure, arrival string) string {
	return fmt.Sprintf(`<Flight>
  <Carrier id="AI">AirIndia</Carrier>
  <FlightNumber>%s</FlightNumber>
  <Source>%s</Source>
  <Destination>%s</Destination>
  <DepartureTimeStamp>%s</DepartureTimeStamp>
  <ArrivalTimeStamp>%s</ArrivalTimeStamp>
  <Class>G</Class>
  <NumberOfStops>0</NumberOfStops>
  <FareBasis>GOWDXB</FareBasis>
  <WarningText/>
  <TicketType>E</TicketType>
</Flight>`, flightNumber, source, destination, departure, arrival)
}

func documentXML(requestID, onward, ret string) string {
	onwardBlock := ""
	if onward != "" {
		onwardBlock = "<OnwardPricedItinerary><Flights>" + onward + "</Flights></OnwardPricedItinerary>"
	}
	returnBlock := ""
	if ret != "" {
		returnBlock = "<ReturnPricedItinerary><Flights>" + ret + "</Flights></ReturnPricedItinerary>"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<AirFareSearchResponse RequestTime="28-09-2015 20:23:49" ResponseTime="28-09-2015 20:23:56">
  <RequestId>%s</RequestId>
  <PricedItineraries>
    <Flights>
      %s
      %s
      <Pricing currency="SGD">
        <ServiceCharges type="SinglePassenger" ChargeType="BaseFare">246.00</ServiceCharges>
        <ServiceCharges type="SinglePassenger" ChargeType="TotalAmount">429.20</ServiceCharges>
      </Pricing>
    </Flights>
  </PricedItineraries>
</AirFareSearchResponse>`, requestID, onwardBlock, returnBlock)
}

func newTestIngestor(t *testing.T) (*Ingestor, *repository.TSVSnapshotRepository, string, string) {
	t.Helper()
	log := logger.NewLogger()
	dataDir := t.TempDir()
	tmpDir := t.TempDir()
	snapshots := repository.NewTSVSnapshotRepository(tmpDir, log).(*repository.TSVSnapshotRepository)
	ingestor := NewIngestor(utils.NewFareParser(log), snapshots, log, nil)
	return ingestor, snapshots, dataDir, tmpDir
}

func writeDocument(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestIngest_SegmentExplosionCount(t *testing.T) {
	tests := []struct {
		name     string
		onward   int
		ret      int
		expected int
	}{
		{name: "two onward one return", onward: 2, ret: 1, expected: 3},
		{name: "onward only", onward: 2, ret: 0, expected: 2},
		{name: "return only", onward: 0, ret: 3, expected: 3},
		{name: "no legs emits one bare row", onward: 0, ret: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor, snapshots, dataDir, _ := newTestIngestor(t)

			onward := ""
			for i := 0; i < tt.onward; i++ {
				onward += segmentXML(fmt.Sprintf("10%d", i), "DXB", "DEL", "2015-10-22T0005", "2015-10-22T0445")
			}
			ret := ""
			for i := 0; i < tt.ret; i++ {
				ret += segmentXML(fmt.Sprintf("20%d", i), "DEL", "DXB", "2015-10-30T0850", "2015-10-30T1435")
			}
			writeDocument(t, dataDir, "doc.xml", documentXML("req-1", onward, ret))

			ingestor.Ingest(context.Background(), dataDir)

			records, err := snapshots.Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, records, tt.expected)
		})
	}
}

func TestIngest_FlattenedFields(t *testing.T) {
	ingestor, snapshots, dataDir, _ := newTestIngestor(t)
	writeDocument(t, dataDir, "doc.xml",
		documentXML("req-1", segmentXML("996", "DXB", "DEL", "2015-10-22T0005", "2015-10-22T0445"), ""))

	options := ingestor.Ingest(context.Background(), dataDir)

	assert.Equal(t, map[string]struct{}{"DXB": {}}, options.Sources)
	assert.Equal(t, map[string]struct{}{"DEL": {}}, options.Destinations)

	records, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, "SGD", rec.PricingCurrency)
	assert.Equal(t, "SinglePassenger/BaseFare/246.00|SinglePassenger/TotalAmount/429.20", rec.Pricing)
	assert.Equal(t, "AI/AirIndia", rec.Carrier)
	assert.Equal(t, "996", rec.FlightNumber)
	assert.Equal(t, filepath.Join(dataDir, "doc.xml"), rec.XMLFilePath)

	require.NotNil(t, rec.RequestTS)
	require.NotNil(t, rec.DepartureTS)
	require.NotNil(t, rec.ArrivalTS)
	require.NotNil(t, rec.TimeDelta)
	assert.Equal(t, 4*time.Hour+40*time.Minute, *rec.TimeDelta)
}

func TestIngest_BareItineraryRowHasNoSegmentFields(t *testing.T) {
	ingestor, snapshots, dataDir, _ := newTestIngestor(t)
	writeDocument(t, dataDir, "doc.xml", documentXML("req-1", "", ""))

	options := ingestor.Ingest(context.Background(), dataDir)
	assert.Empty(t, options.Sources)
	assert.Empty(t, options.Destinations)

	records, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].FlightNumber)
	assert.Equal(t, "", records[0].Source)
	assert.Nil(t, records[0].TimeDelta)
	assert.Equal(t, "SGD", records[0].PricingCurrency)
}

func TestIngest_NoDocumentsFound(t *testing.T) {
	ingestor, snapshots, dataDir, tmpDir := newTestIngestor(t)
	writeDocument(t, dataDir, "notes.txt", "not a fare document")

	options := ingestor.Ingest(context.Background(), dataDir)

	assert.Empty(t, options.Sources)
	assert.Empty(t, options.Destinations)

	// No snapshot gets created for an empty run.
	_, err := snapshots.Load(context.Background())
	assert.ErrorIs(t, err, entity.ErrSnapshotMissing)
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngest_MalformedDocumentAbortsRun(t *testing.T) {
	ingestor, snapshots, dataDir, _ := newTestIngestor(t)
	writeDocument(t, dataDir, "a_good.xml",
		documentXML("req-1", segmentXML("996", "DXB", "DEL", "2015-10-22T0005", "2015-10-22T0445"), ""))
	writeDocument(t, dataDir, "b_broken.xml", "<AirFareSearchResponse><oops></AirFareSearchResponse>")

	options := ingestor.Ingest(context.Background(), dataDir)

	// The whole run fails: empty sets, nothing persisted.
	assert.Empty(t, options.Sources)
	assert.Empty(t, options.Destinations)
	_, err := snapshots.Load(context.Background())
	assert.ErrorIs(t, err, entity.ErrSnapshotMissing)
}

func TestIngest_FailedRunKeepsPreviousSnapshot(t *testing.T) {
	ingestor, snapshots, dataDir, _ := newTestIngestor(t)
	writeDocument(t, dataDir, "good.xml",
		documentXML("req-1", segmentXML("996", "DXB", "DEL", "2015-10-22T0005", "2015-10-22T0445"), ""))

	first := ingestor.Ingest(context.Background(), dataDir)
	require.NotEmpty(t, first.Sources)

	writeDocument(t, dataDir, "z_broken.xml", "definitely not xml <")
	second := ingestor.Ingest(context.Background(), dataDir)
	assert.Empty(t, second.Sources)

	// The earlier snapshot is still readable and complete.
	records, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestIngest_RowOrderFollowsDiscoveryOrder(t *testing.T) {
	ingestor, snapshots, dataDir, _ := newTestIngestor(t)
	writeDocument(t, dataDir, "a.xml",
		documentXML("req-a", segmentXML("111", "DXB", "DEL", "2015-10-22T0005", "2015-10-22T0445"), ""))
	writeDocument(t, dataDir, "b.xml",
		documentXML("req-b", segmentXML("222", "DEL", "BKK", "2015-10-22T1350", "2015-10-22T1935"), ""))

	ingestor.Ingest(context.Background(), dataDir)

	records, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "111", records[0].FlightNumber)
	assert.Equal(t, "222", records[1].FlightNumber)
}
