package types

import "database/sql/driver"

// ChecklistItem is one control point on a quality checklist.
type ChecklistItem struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Passed *bool    `json:"passed,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// ChecklistItems is persisted as JSONB on quality_checks.
type ChecklistItems []ChecklistItem

func (c ChecklistItems) Value() (driver.Value, error) {
	return encodeArray(c)
}

func (c *ChecklistItems) Scan(value any) error {
	return decodeArray(value, (*[]ChecklistItem)(c))
}
