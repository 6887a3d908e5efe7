package source

// Headers lists the canonical display columns of SHOW COLUMNS output,
// in the order the client prints them.
var Headers = []string{"Field", "Type", "Null", "Key", "Default", "Extra"}

type ColumnRecord struct {
	Field   string  `json:"Field"`
	Type    string  `json:"Type"`
	Null    string  `json:"Null"`
	Key     string  `json:"Key"`
	Default *string `json:"Default"`
	Extra   string  `json:"Extra"`
}

// Value returns the display text for one of the canonical headers.
// A nil Default renders as the literal NULL, matching the mysql client.
func (c ColumnRecord) Value(header string) (string, bool) {
	switch header {
	case "Field":
		return c.Field, true
	case "Type":
		return c.Type, true
	case "Null":
		return c.Null, true
	case "Key":
		return c.Key, true
	case "Default":
		if c.Default == nil {
			return "NULL", true
		}
		return *c.Default, true
	case "Extra":
		return c.Extra, true
	}
	return "", false
}

type IndexInfo struct {
	Name   string `json:"name"`
	Column string `json:"column"`
	Unique bool   `json:"unique"`
}

// TableStats carries the optional statistics bundle. Rows and DataBytes
// are nil when the corresponding query failed or was skipped.
type TableStats struct {
	Rows      *int64      `json:"row_count"`
	DataBytes *uint64     `json:"data_bytes"`
	Indexes   []IndexInfo `json:"indexes"`
}

// IndexCount is the number of distinct index names in the listing.
func (s TableStats) IndexCount() int {
	seen := map[string]struct{}{}
	for _, idx := range s.Indexes {
		seen[idx.Name] = struct{}{}
	}
	return len(seen)
}

type TableResult struct {
	Database string         `json:"database,omitempty"`
	Table    string         `json:"table"`
	Columns  []ColumnRecord `json:"columns"`
	Stats    *TableStats    `json:"stats,omitempty"`
}
