package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avias-service/internal/domain/entity"
	"avias-service/internal/interface/repository"
	"avias-service/internal/usecase"
	"avias-service/pkg/logger"
	"avias-service/pkg/utils"
)

const testDocument = `<?xml version="1.0" encoding="UTF-8"?>
<AirFareSearchResponse RequestTime="28-09-2015 20:23:49" ResponseTime="28-09-2015 20:23:56">
  <RequestId>req-1</RequestId>
  <PricedItineraries>
    <Flights>
      <OnwardPricedItinerary>
        <Flights>
          <Flight>
            <Carrier id="EK">Emirates</Carrier>
            <FlightNumber>384</FlightNumber>
            <Source>DXB</Source>
            <Destination>BKK</Destination>
            <DepartureTimeStamp>2015-10-22T0935</DepartureTimeStamp>
            <ArrivalTimeStamp>2015-10-22T1855</ArrivalTimeStamp>
            <Class>Y</Class>
            <NumberOfStops>0</NumberOfStops>
            <FareBasis>YOW</FareBasis>
            <WarningText/>
            <TicketType>E</TicketType>
          </Flight>
        </Flights>
      </OnwardPricedItinerary>
      <Pricing currency="SGD">
        <ServiceCharges type="SinglePassenger" ChargeType="TotalAmount">1000.00</ServiceCharges>
      </Pricing>
    </Flights>
  </PricedItineraries>
</AirFareSearchResponse>`

func newTestServer(t *testing.T, withDocument bool) (*httptest.Server, *OptionsCache) {
	t.Helper()
	log := logger.NewLogger()
	dataDir := t.TempDir()
	tmpDir := t.TempDir()
	if withDocument {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, "doc.xml"), []byte(testDocument), 0o644))
	}

	snapshots := repository.NewTSVSnapshotRepository(tmpDir, log)
	ingestor := usecase.NewIngestor(utils.NewFareParser(log), snapshots, log, nil)
	ranker := usecase.NewRanker(snapshots, log, nil)

	cache := NewOptionsCache()
	mux := http.NewServeMux()
	NewHandler(ingestor, ranker, cache, dataDir, log).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, cache
}

func postForm(t *testing.T, serverURL, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.PostForm(serverURL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestReingestThenFlightOptions(t *testing.T) {
	server, _ := newTestServer(t, true)

	resp := postForm(t, server.URL, "/reingest", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode) // after redirect

	getResp, err := http.Get(server.URL + "/flight_options")
	require.NoError(t, err)
	defer getResp.Body.Close()
	body := readBody(t, getResp)
	assert.Contains(t, body, `<option value="DXB">`)
	assert.Contains(t, body, `<option value="BKK">`)
}

func TestFlightVariations(t *testing.T) {
	server, _ := newTestServer(t, true)
	postForm(t, server.URL, "/reingest", url.Values{})

	resp := postForm(t, server.URL, "/flight_variations", url.Values{
		"departure":   {"DXB"},
		"destination": {"BKK"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "384")
	assert.Contains(t, body, "SinglePassenger/TotalAmount/1000.00")
}

func TestFlightTimePrice(t *testing.T) {
	server, _ := newTestServer(t, true)
	postForm(t, server.URL, "/reingest", url.Values{})

	resp := postForm(t, server.URL, "/flight_time_price", url.Values{
		"departure":   {"DXB"},
		"destination": {"BKK"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Getting flights time and price from DXB to BKK")
	assert.Contains(t, body, "384")
	assert.Contains(t, body, "TotalAmount")
}

func TestFlightTimePrice_MissingSnapshot(t *testing.T) {
	server, _ := newTestServer(t, false)

	resp := postForm(t, server.URL, "/flight_time_price", url.Values{
		"departure":   {"DXB"},
		"destination": {"BKK"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Request failed")
}

func TestFlightTimePrice_NoMatchIsNotAnError(t *testing.T) {
	server, _ := newTestServer(t, true)
	postForm(t, server.URL, "/reingest", url.Values{})

	resp := postForm(t, server.URL, "/flight_time_price", url.Values{
		"departure":   {"XXX"},
		"destination": {"YYY"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutePairValidation(t *testing.T) {
	server, _ := newTestServer(t, true)

	resp := postForm(t, server.URL, "/flight_variations", url.Values{"departure": {"DXB"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptionsCache(t *testing.T) {
	cache := NewOptionsCache()
	assert.Empty(t, cache.Sources())

	cache.Set(entity.RouteOptions{
		Sources:      map[string]struct{}{"DXB": {}, "BKK": {}},
		Destinations: map[string]struct{}{"DEL": {}},
	})

	assert.Equal(t, []string{"BKK", "DXB"}, cache.Sources())
	assert.Equal(t, []string{"DEL"}, cache.Destinations())
}
