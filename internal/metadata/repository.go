package metadata

import (
	"context"

	"github.com/sharath018/gencon-schedule-backend/database"
	"github.com/sharath018/gencon-schedule-backend/internal/unique"
	"gorm.io/gorm"
)

type valueRow struct {
	ID    uint
	Value string
}

// StringRepository stores one kind of reference value. The same implementation
// serves every reference table, and game masters as well.
type StringRepository[T any] struct {
	DB     *gorm.DB
	table  string
	column string
	build  func(id uint, value string) T
}

func NewStringRepository[T any](db *gorm.DB, table, column string, build func(id uint, value string) T) *StringRepository[T] {
	return &StringRepository[T]{DB: db, table: table, column: column, build: build}
}

// ===========================
// 🔍 Read existing values
func (r *StringRepository[T]) ReadMatching(ctx context.Context, values []string) ([]*T, error) {
	byValue := make(map[string]uint, len(values))
	for _, chunk := range database.Chunks(values, database.BatchSize) {
		var rows []valueRow
		err := r.DB.WithContext(ctx).
			Table(r.table).
			Select("id, "+r.column+" AS value").
			Where(r.column+" IN ?", chunk).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			byValue[row.Value] = row.ID
		}
	}

	out := make([]*T, len(values))
	for i, v := range values {
		if id, ok := byValue[v]; ok {
			entity := r.build(id, v)
			out[i] = &entity
		}
	}
	return out, nil
}

// ===========================
// 💾 Insert new values
// Returns unique.ErrConflict when another writer stored any of them first.
func (r *StringRepository[T]) BulkSave(ctx context.Context, values []string) ([]uint, error) {
	byValue := make(map[string]uint, len(values))
	for _, chunk := range database.Chunks(values, database.BatchSize) {
		rows := make([][]interface{}, len(chunk))
		for i, v := range chunk {
			rows[i] = []interface{}{v}
		}

		var inserted []valueRow
		returning := "id, " + r.column + " AS value"
		if err := database.InsertIgnore(r.DB.WithContext(ctx), r.table, []string{r.column}, rows, returning, &inserted); err != nil {
			return nil, err
		}
		for _, row := range inserted {
			byValue[row.Value] = row.ID
		}
	}

	ids := make([]uint, len(values))
	for i, v := range values {
		id, ok := byValue[v]
		if !ok {
			return nil, unique.ErrConflict
		}
		ids[i] = id
	}
	return ids, nil
}
