package pipeline

import "fmt"

// ConfigurationError indicates the account-group configuration references
// something the resolved account list does not contain. It is a config/data
// mismatch for the operator to fix, not a runtime condition to recover from.
type ConfigurationError struct {
	Reference string // the group or account name that failed to resolve
	Detail    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Reference, e.Detail)
}

// DataQualityError indicates a raw transaction record that failed
// required-field validation. It fails the whole containing batch; there is no
// partial-success mode.
type DataQualityError struct {
	Index int // position of the record within the fetched batch
	Err   error
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("malformed transaction record %d: %v", e.Index, e.Err)
}

func (e *DataQualityError) Unwrap() error {
	return e.Err
}
