// Package schema holds the backend-agnostic description of a database table.
//
// Values are plain data. The introspector builds a fresh graph per call and
// the script and CRUD builders only read it.
package schema

// DbType describes a column's canonical type. Size is exclusive with
// Precision/Scale.
type DbType struct {
	Name      string `json:"name"`
	Size      *int   `json:"size,omitempty"`
	Precision *int   `json:"precision,omitempty"`
	Scale     *int   `json:"scale,omitempty"`
}

// Identity holds seed and increment as the catalog reports them.
type Identity struct {
	Seed      string `json:"seed"`
	Increment string `json:"increment"`
}

// Column is a single table column.
type Column struct {
	Name       string    `json:"name"`
	Type       DbType    `json:"type"`
	IsNullable bool      `json:"isNullable"`
	Default    *string   `json:"default,omitempty"`
	Identity   *Identity `json:"identity,omitempty"`
}

// PrimaryKey lists its columns in key order.
type PrimaryKey struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// ForeignKey pairs ColumnNames[i] with ReferencedColumnNames[i].
type ForeignKey struct {
	Name                  string   `json:"name"`
	ColumnNames           []string `json:"columnNames"`
	ReferencedTableName   string   `json:"referencedTableName"`
	ReferencedColumnNames []string `json:"referencedColumnNames"`
}

// SortDirection of an index column.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// MarshalText renders the direction as "ASC" or "DESC".
func (d SortDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "ASC" or "DESC"; anything else is ascending.
func (d *SortDirection) UnmarshalText(text []byte) error {
	if string(text) == "DESC" {
		*d = Descending
	} else {
		*d = Ascending
	}
	return nil
}

// IndexColumn is one entry of an index's column list.
type IndexColumn struct {
	Name          string        `json:"name"`
	SortDirection SortDirection `json:"sortDirection"`
}

// Index is a table index, possibly the one backing the primary key.
type Index struct {
	Name      string        `json:"name"`
	TableName string        `json:"tableName"`
	Columns   []IndexColumn `json:"columns"`
	IsUnique  bool          `json:"isUnique"`
}

// Table is the full structure of one table. Columns are in catalog ordinal
// order and Indexes are sorted by name.
type Table struct {
	Name        string        `json:"name"`
	Columns     []*Column     `json:"columns"`
	PrimaryKey  *PrimaryKey   `json:"primaryKey,omitempty"`
	ForeignKeys []*ForeignKey `json:"foreignKeys"`
	Indexes     []*Index      `json:"indexes"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
