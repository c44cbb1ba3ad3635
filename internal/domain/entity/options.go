// internal/domain/entity/options.go
package entity

// RouteOptions is the distinct non-empty source and destination values
// of one ingestion run. It feeds the departure/destination selects of
// the options form and is rebuilt explicitly on every ingestion.
type RouteOptions struct {
	Sources      map[string]struct{}
	Destinations map[string]struct{}
}

// EmptyRouteOptions returns options with no choices, the result of a
// failed or empty ingestion run.
func EmptyRouteOptions() RouteOptions {
	return RouteOptions{
		Sources:      map[string]struct{}{},
		Destinations: map[string]struct{}{},
	}
}
