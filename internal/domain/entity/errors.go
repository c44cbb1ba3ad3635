// internal/domain/entity/errors.go
package entity

import "errors"

// ErrSnapshotMissing is returned by a rank query before any successful
// ingestion has published a snapshot.
var ErrSnapshotMissing = errors.New("flight snapshot not published yet")

// ErrMalformedPricing marks pricing data that cannot be exploded into
// numeric charge lines. It fails the whole query rather than dropping
// rows, so an empty result always means "no match", never "bad data".
var ErrMalformedPricing = errors.New("malformed pricing data")
