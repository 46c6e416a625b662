package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sharath018/gencon-schedule-backend/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔍 Detect existing events by natural key
func (r *Repository) BulkExists(ctx context.Context, gameIDs []string, year int) ([]*uint, error) {
	type keyRow struct {
		ID     uint
		GameID string
	}

	found := make(map[string]uint, len(gameIDs))
	for _, chunk := range database.Chunks(gameIDs, database.BatchSize) {
		var rows []keyRow
		err := r.DB.WithContext(ctx).
			Model(&Event{}).
			Select("id, game_id").
			Where("year = ? AND game_id IN ?", year, chunk).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, kr := range rows {
			found[kr.GameID] = kr.ID
		}
	}

	out := make([]*uint, len(gameIDs))
	for i, gid := range gameIDs {
		if id, ok := found[gid]; ok {
			out[i] = &id
		}
	}
	return out, nil
}

// ===========================
// 🎯 Bulk create
func (r *Repository) BulkCreate(ctx context.Context, params []CreateParams) ([]uint, error) {
	if len(params) == 0 {
		return []uint{}, nil
	}

	rows := make([]Event, len(params))
	for i, p := range params {
		rows[i] = p.UpdateParams.toModel()
		rows[i].GameID = p.GameID
		rows[i].Year = p.Year
	}

	err := r.DB.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&rows, database.BatchSize).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// ===========================
// 📝 Bulk update
// Every column but the natural key is overwritten, so a nil location clears it.
func (r *Repository) BulkUpdate(ctx context.Context, updates []Update) error {
	for _, u := range updates {
		row := u.Params.toModel()
		res := r.DB.WithContext(ctx).
			Model(&Event{}).
			Where("id = ?", u.ID).
			Select("*").
			Omit("id", "game_id", "year", "created_at", clause.Associations).
			Updates(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("event %d: %w", u.ID, gorm.ErrRecordNotFound)
		}
	}
	return nil
}

func (p UpdateParams) toModel() Event {
	e := Event{
		EventTypeID:      p.EventTypeID,
		GameSystemID:     p.GameSystemID,
		Title:            p.Title,
		Description:      p.Description,
		StartTime:        p.Start,
		EndTime:          p.End,
		Cost:             p.Cost,
		TicketsAvailable: p.TicketsAvailable,
		MinPlayers:       p.MinPlayers,
		MaxPlayers:       p.MaxPlayers,
		AgeRequirement:   p.AgeRequirement,
		ExperienceLevel:  p.ExperienceLevel,
		TableNumber:      p.TableNumber,
		MaterialsID:      p.MaterialsID,
		ContactID:        p.ContactID,
		WebsiteID:        p.WebsiteID,
		GroupID:          p.GroupID,
	}
	if p.Location != nil {
		id := p.Location.LocationID
		e.LocationID = &id
		e.RoomID = p.Location.RoomID
		e.SectionID = p.Location.SectionID
	}
	if p.Tournament != nil {
		round, total := p.Tournament.Round, p.Tournament.TotalRounds
		e.Round = &round
		e.TotalRounds = &total
	}
	return e
}

// ===========================
// 📄 Read side

func (r *Repository) withRefs(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("EventType").
		Preload("GameSystem").
		Preload("Materials").
		Preload("Contact").
		Preload("Website").
		Preload("Group").
		Preload("Location").
		Preload("Room").
		Preload("Section")
}

// List returns one page of events starting within [from, to), or all of them
// when from is zero.
func (r *Repository) List(ctx context.Context, year int, from, to time.Time, search string, limit, offset int) ([]Event, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if year > 0 {
			db = db.Where("year = ?", year)
		}
		if !from.IsZero() {
			db = db.Where("start_time >= ? AND start_time < ?", from, to)
		}
		if search != "" {
			like := "%" + search + "%"
			db = db.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR game_id = ?)", like, like, search)
		}
		return db
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&Event{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	err := r.withRefs(ctx).
		Scopes(filter).
		Order("start_time ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, total, err
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	if err := r.withRefs(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// StartTimes returns every start time of the year, for computing event days.
func (r *Repository) StartTimes(ctx context.Context, year int) ([]time.Time, error) {
	var starts []time.Time
	query := r.DB.WithContext(ctx).Model(&Event{})
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	err := query.Distinct("start_time").Order("start_time").Pluck("start_time", &starts).Error
	return starts, err
}

// LatestYear is the most recent convention year with events, or 0.
func (r *Repository) LatestYear(ctx context.Context) (int, error) {
	var year sql.NullInt64
	if err := r.DB.WithContext(ctx).Model(&Event{}).Select("MAX(year)").Row().Scan(&year); err != nil {
		return 0, err
	}
	return int(year.Int64), nil
}
