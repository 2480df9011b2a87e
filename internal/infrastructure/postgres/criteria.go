package postgres

import (
	"fmt"
	"slices"
	"sort"

	"github.com/conference-api/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyCriteria adds one equality per criteria entry. Keys naming a known
// column compare against it; any other key is looked up in the jsonb
// attributes column so criteria names never reach the SQL text unquoted.
func applyCriteria(tx *gorm.DB, c domain.Criteria, isColumn func(string) bool) *gorm.DB {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isColumn(k) {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: k}, Value: c[k]})
			continue
		}
		tx = tx.Where(datatypes.JSONQuery("attributes").Equals(c[k], k))
	}
	return tx
}

func toJSONMap(attrs map[string]string) datatypes.JSONMap {
	if attrs == nil {
		return nil
	}
	m := make(datatypes.JSONMap, len(attrs))
	for k, v := range attrs {
		m[k] = v
	}
	return m
}

// fromJSONMap flattens stored attributes to strings; non-string JSON values
// are rendered with fmt so they can still be matched textually.
func fromJSONMap(m datatypes.JSONMap) map[string]string {
	if len(m) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			attrs[k] = s
			continue
		}
		attrs[k] = fmt.Sprint(v)
	}
	return attrs
}

// upsert inserts m or updates the given columns of the existing row. The
// attributes column is only overwritten when the caller supplied attributes.
func upsert(tx *gorm.DB, m any, columns []string, withAttributes bool) *gorm.DB {
	if withAttributes {
		columns = append(slices.Clone(columns), "attributes")
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(m)
}
