package templates

import (
	"html/template"
	"time"

	"avias-service/internal/domain/entity"
)

// OptionsData feeds the two-select flight form.
type OptionsData struct {
	Sources      []string
	Destinations []string
}

// VariationsData feeds the variations listing page.
type VariationsData struct {
	Departure   string
	Destination string
	Rows        []entity.FlightVariation
}

// TimePriceData feeds the five ranked tables page.
type TimePriceData struct {
	Departure   string
	Destination string
	Result      *entity.RankResult
}

// ErrorData feeds the error page.
type ErrorData struct {
	Message string
}

// FormatTimeDelta renders a duration cell; an absent duration renders
// as an empty cell.
func FormatTimeDelta(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return d.String()
}

var funcMap = template.FuncMap{
	"timedelta": FormatTimeDelta,
}

const optionsPage = `{{define "flight_options"}}<!DOCTYPE html>
<html>
<head><title>Flights</title></head>
<body>
<h1>Flight search</h1>
<form method="POST">
  <label for="departure">Departure point</label>
  <select name="departure" id="departure">
    {{range .Sources}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>
  <label for="destination">Destination point</label>
  <select name="destination" id="destination">
    {{range .Destinations}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>
  <br>
  <button type="submit" formaction="/flight_variations">Get flights variations from one point to another</button>
  <button type="submit" formaction="/flight_time_price">Get the most expensive/cheapest, fast/long, and best flights</button>
</form>
</body>
</html>
{{end}}`

const variationsPage = `{{define "flight_variations"}}<!DOCTYPE html>
<html>
<head><title>Flight variations</title></head>
<body>
<p><font size="10">Flights variations from {{.Departure}} to {{.Destination}}</font></p>
<table border="1">
<tr><th>FlightNumber</th><th>Source</th><th>Destination</th><th>DepartureTimeStamp</th><th>ArrivalTimeStamp</th><th>Class</th><th>NumberOfStops</th><th>TicketType</th><th>Pricing</th></tr>
{{range .Rows}}<tr><td>{{.FlightNumber}}</td><td>{{.Source}}</td><td>{{.Destination}}</td><td>{{.DepartureTimeStamp}}</td><td>{{.ArrivalTimeStamp}}</td><td>{{.Class}}</td><td>{{.NumberOfStops}}</td><td>{{.TicketType}}</td><td>{{.Pricing}}</td></tr>
{{end}}</table>
</body>
</html>
{{end}}`

const optionTable = `{{define "option_table"}}<table border="1">
<tr><th>FlightNumber</th><th>Source</th><th>Destination</th><th>DepartureTimeStamp</th><th>ArrivalTimeStamp</th><th>Class</th><th>NumberOfStops</th><th>TicketType</th><th>PricingCost</th><th>PricingType</th><th>PricingChargeType</th><th>TimeDelta</th></tr>
{{range .}}<tr><td>{{.FlightNumber}}</td><td>{{.Source}}</td><td>{{.Destination}}</td><td>{{.DepartureTimeStamp}}</td><td>{{.ArrivalTimeStamp}}</td><td>{{.Class}}</td><td>{{.NumberOfStops}}</td><td>{{.TicketType}}</td><td>{{.Cost}}</td><td>{{.ChargeType}}</td><td>{{.ChargeSubType}}</td><td>{{timedelta .TimeDelta}}</td></tr>
{{end}}</table>
{{end}}`

const timePricePage = `{{define "flight_time_price"}}<!DOCTYPE html>
<html>
<head><title>Flight time and price</title></head>
<body>
<p><font size="10">Getting flights time and price from {{.Departure}} to {{.Destination}}</font></p>
<p>Minimum price and maximum price</p>
{{template "option_table" .Result.MinPrice}}
<br>
{{template "option_table" .Result.MaxPrice}}
<p>Minimum time and maximum time</p>
{{template "option_table" .Result.MinDuration}}
<br>
{{template "option_table" .Result.MaxDuration}}
<p>Best by price and time</p>
{{template "option_table" .Result.Best}}
</body>
</html>
{{end}}`

const errorPage = `{{define "error"}}<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
<p><font size="6">Request failed: {{.Message}}</font></p>
</body>
</html>
{{end}}`

// Pages holds every parsed page template.
var Pages = template.Must(template.New("pages").
	Funcs(funcMap).
	Parse(optionsPage + variationsPage + optionTable + timePricePage + errorPage))
