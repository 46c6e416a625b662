package gamemaster

import (
	"context"

	"github.com/sharath018/gencon-schedule-backend/database"
	"github.com/sharath018/gencon-schedule-backend/internal/metadata"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Associations is the event <-> game master link store.
type Associations interface {
	// Existing returns the linked game master IDs of every stored event among
	// eventIDs. Events that are not stored have no key.
	Existing(ctx context.Context, eventIDs []uint) (map[uint][]uint, error)
	Add(ctx context.Context, eventID uint, gameMasterIDs []uint) error
	Remove(ctx context.Context, eventID uint, gameMasterIDs []uint) error
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Names returns the unique-name store for game masters.
func (r *Repository) Names() *metadata.StringRepository[GameMaster] {
	return metadata.NewStringRepository(r.DB, "game_masters", "name", func(id uint, name string) GameMaster {
		return GameMaster{ID: id, Name: name}
	})
}

// ===========================
// 🔍 Existing links
func (r *Repository) Existing(ctx context.Context, eventIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(eventIDs))
	for _, chunk := range database.Chunks(eventIDs, database.BatchSize) {
		var stored []uint
		if err := r.DB.WithContext(ctx).Table("events").Where("id IN ?", chunk).Pluck("id", &stored).Error; err != nil {
			return nil, err
		}
		for _, id := range stored {
			out[id] = []uint{}
		}

		var links []EventGameMaster
		if err := r.DB.WithContext(ctx).Where("event_id IN ?", chunk).Order("game_master_id").Find(&links).Error; err != nil {
			return nil, err
		}
		for _, l := range links {
			if _, ok := out[l.EventID]; ok {
				out[l.EventID] = append(out[l.EventID], l.GameMasterID)
			}
		}
	}
	return out, nil
}

// ===========================
// ➕ Add links
func (r *Repository) Add(ctx context.Context, eventID uint, gameMasterIDs []uint) error {
	if err := r.ensureEvent(ctx, eventID); err != nil {
		return err
	}

	var stored []uint
	if err := r.DB.WithContext(ctx).Model(&GameMaster{}).Where("id IN ?", gameMasterIDs).Pluck("id", &stored).Error; err != nil {
		return err
	}
	present := make(map[uint]bool, len(stored))
	for _, id := range stored {
		present[id] = true
	}
	links := make([]EventGameMaster, 0, len(gameMasterIDs))
	for _, id := range gameMasterIDs {
		if !present[id] {
			return &GameMasterDoesNotExistError{GameMasterID: id}
		}
		links = append(links, EventGameMaster{EventID: eventID, GameMasterID: id})
	}

	return r.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// ===========================
// ➖ Remove links
func (r *Repository) Remove(ctx context.Context, eventID uint, gameMasterIDs []uint) error {
	if err := r.ensureEvent(ctx, eventID); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).
		Where("event_id = ? AND game_master_id IN ?", eventID, gameMasterIDs).
		Delete(&EventGameMaster{}).Error
}

// ListByEvents returns game master names per event, for read endpoints.
func (r *Repository) ListByEvents(ctx context.Context, eventIDs []uint) (map[uint][]string, error) {
	type nameRow struct {
		EventID uint
		Name    string
	}
	var rows []nameRow
	err := r.DB.WithContext(ctx).
		Table("event_game_masters egm").
		Select("egm.event_id, gm.name").
		Joins("JOIN game_masters gm ON gm.id = egm.game_master_id").
		Where("egm.event_id IN ?", eventIDs).
		Order("gm.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint][]string)
	for _, nr := range rows {
		out[nr.EventID] = append(out[nr.EventID], nr.Name)
	}
	return out, nil
}

func (r *Repository) ensureEvent(ctx context.Context, eventID uint) error {
	var count int64
	if err := r.DB.WithContext(ctx).Table("events").Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &GameDoesNotExistError{EventID: eventID}
	}
	return nil
}
