package models

// ImportResult reports the outcome of a bulk CSV import. Rejected rows are
// skipped and counted; they never abort the rows that already landed.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
