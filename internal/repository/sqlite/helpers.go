package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField decodes JSON from a nullable column.
// NULL and empty strings decode to nil.
func unmarshalJSONField(ns sql.NullString) (any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// marshalToNull marshals a value to a nullable JSON string
func marshalToNull(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Mine Row Scanner
// ============================================================================

// mineRow holds all columns from a mine_data query for scanning
type mineRow struct {
	MinionID  string
	Function  string
	Data      sql.NullString
	UpdatedAt int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match mineColumns order exactly:
// minion_id, function, data, updated_at
func (r *mineRow) scanArgs() []interface{} {
	return []interface{}{
		&r.MinionID,
		&r.Function,
		&r.Data,
		&r.UpdatedAt,
	}
}

// value decodes the stored JSON document
func (r *mineRow) value() (any, error) {
	v, err := unmarshalJSONField(r.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s for %s: %w", r.Function, r.MinionID, err)
	}
	return v, nil
}

// updated returns the row's last write time
func (r *mineRow) updated() time.Time {
	return time.Unix(r.UpdatedAt, 0).UTC()
}

// mineColumns is the SELECT column list for mine_data queries
const mineColumns = `minion_id, function, data, updated_at`
