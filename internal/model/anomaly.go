package model

import "fmt"

// Anomaly records a non-fatal data-quality defect found while decoding a
// remote document: an unknown enum value, a missing field, a wrong type.
// The offending field is default-substituted and the anomaly reported as
// telemetry; the document and the rest of its batch are kept.
type Anomaly struct {
	Collection string
	DocID      string
	Field      string
	Detail     string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s/%s field %q: %s", a.Collection, a.DocID, a.Field, a.Detail)
}
