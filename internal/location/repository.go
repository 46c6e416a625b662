package location

import (
	"context"

	"github.com/sharath018/gencon-schedule-backend/database"
	"github.com/sharath018/gencon-schedule-backend/internal/unique"
	"gorm.io/gorm"
)

// Reader reads each tier by its natural key. Results are aligned with the
// input, nil where nothing is stored.
type Reader interface {
	ReadLocations(ctx context.Context, names []string) ([]*Location, error)
	ReadRooms(ctx context.Context, keys []RoomKey) ([]*Room, error)
	ReadSections(ctx context.Context, keys []SectionKey) ([]*Section, error)
}

// Writer inserts each tier and returns the new IDs aligned with the input.
// It returns unique.ErrConflict when a concurrent writer got there first.
type Writer interface {
	SaveLocations(ctx context.Context, names []string) ([]uint, error)
	SaveRooms(ctx context.Context, keys []RoomKey) ([]uint, error)
	SaveSections(ctx context.Context, keys []SectionKey) ([]uint, error)
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🏢 Buildings
func (r *Repository) ReadLocations(ctx context.Context, names []string) ([]*Location, error) {
	byName := make(map[string]Location, len(names))
	for _, chunk := range database.Chunks(names, database.BatchSize) {
		var rows []Location
		if err := r.DB.WithContext(ctx).Where("name IN ?", chunk).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			byName[row.Name] = row
		}
	}

	out := make([]*Location, len(names))
	for i, name := range names {
		if row, ok := byName[name]; ok {
			out[i] = &row
		}
	}
	return out, nil
}

func (r *Repository) SaveLocations(ctx context.Context, names []string) ([]uint, error) {
	byName := make(map[string]uint, len(names))
	for _, chunk := range database.Chunks(names, database.BatchSize) {
		rows := make([][]interface{}, len(chunk))
		for i, name := range chunk {
			rows[i] = []interface{}{name}
		}
		var inserted []Location
		if err := database.InsertIgnore(r.DB.WithContext(ctx), "locations", []string{"name"}, rows, "id, name", &inserted); err != nil {
			return nil, err
		}
		for _, row := range inserted {
			byName[row.Name] = row.ID
		}
	}

	ids := make([]uint, len(names))
	for i, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, unique.ErrConflict
		}
		ids[i] = id
	}
	return ids, nil
}

// ===========================
// 🚪 Rooms
func (r *Repository) ReadRooms(ctx context.Context, keys []RoomKey) ([]*Room, error) {
	byKey := make(map[RoomKey]Room, len(keys))
	for _, chunk := range database.Chunks(keys, database.BatchSize) {
		tuples := make([][]interface{}, len(chunk))
		for i, k := range chunk {
			tuples[i] = []interface{}{k.LocationID, k.Name}
		}
		var rows []Room
		if err := r.DB.WithContext(ctx).Where("(location_id, name) IN ?", tuples).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			byKey[RoomKey{LocationID: row.LocationID, Name: row.Name}] = row
		}
	}

	out := make([]*Room, len(keys))
	for i, k := range keys {
		if row, ok := byKey[k]; ok {
			out[i] = &row
		}
	}
	return out, nil
}

func (r *Repository) SaveRooms(ctx context.Context, keys []RoomKey) ([]uint, error) {
	byKey := make(map[RoomKey]uint, len(keys))
	for _, chunk := range database.Chunks(keys, database.BatchSize) {
		rows := make([][]interface{}, len(chunk))
		for i, k := range chunk {
			rows[i] = []interface{}{k.LocationID, k.Name}
		}
		var inserted []Room
		if err := database.InsertIgnore(r.DB.WithContext(ctx), "rooms", []string{"location_id", "name"}, rows, "id, location_id, name", &inserted); err != nil {
			return nil, err
		}
		for _, row := range inserted {
			byKey[RoomKey{LocationID: row.LocationID, Name: row.Name}] = row.ID
		}
	}

	ids := make([]uint, len(keys))
	for i, k := range keys {
		id, ok := byKey[k]
		if !ok {
			return nil, unique.ErrConflict
		}
		ids[i] = id
	}
	return ids, nil
}

// ===========================
// 🪑 Sections
func (r *Repository) ReadSections(ctx context.Context, keys []SectionKey) ([]*Section, error) {
	byKey := make(map[SectionKey]Section, len(keys))
	for _, chunk := range database.Chunks(keys, database.BatchSize) {
		tuples := make([][]interface{}, len(chunk))
		for i, k := range chunk {
			tuples[i] = []interface{}{k.RoomID, k.Name}
		}
		var rows []Section
		if err := r.DB.WithContext(ctx).Where("(room_id, name) IN ?", tuples).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			byKey[SectionKey{RoomID: row.RoomID, Name: row.Name}] = row
		}
	}

	out := make([]*Section, len(keys))
	for i, k := range keys {
		if row, ok := byKey[k]; ok {
			out[i] = &row
		}
	}
	return out, nil
}

func (r *Repository) SaveSections(ctx context.Context, keys []SectionKey) ([]uint, error) {
	byKey := make(map[SectionKey]uint, len(keys))
	for _, chunk := range database.Chunks(keys, database.BatchSize) {
		rows := make([][]interface{}, len(chunk))
		for i, k := range chunk {
			rows[i] = []interface{}{k.RoomID, k.Name}
		}
		var inserted []Section
		if err := database.InsertIgnore(r.DB.WithContext(ctx), "sections", []string{"room_id", "name"}, rows, "id, room_id, name", &inserted); err != nil {
			return nil, err
		}
		for _, row := range inserted {
			byKey[SectionKey{RoomID: row.RoomID, Name: row.Name}] = row.ID
		}
	}

	ids := make([]uint, len(keys))
	for i, k := range keys {
		id, ok := byKey[k]
		if !ok {
			return nil, unique.ErrConflict
		}
		ids[i] = id
	}
	return ids, nil
}
