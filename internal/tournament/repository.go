package tournament

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ListRoundEvents loads every event of the year that carries round info.
func (r *Repository) ListRoundEvents(ctx context.Context, year int) ([]RawIngest, error) {
	type roundRow struct {
		ID          uint
		Title       string
		StartTime   time.Time
		Round       *int
		TotalRounds *int
	}

	var rows []roundRow
	err := r.DB.WithContext(ctx).
		Table("events").
		Select("id, title, start_time, round, total_rounds").
		Where("year = ? AND total_rounds IS NOT NULL", year).
		Order("start_time ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]RawIngest, 0, len(rows))
	for _, rr := range rows {
		info := RoundInfo{Round: 1, TotalRounds: *rr.TotalRounds}
		if rr.Round != nil {
			info.Round = *rr.Round
		}
		out = append(out, RawIngest{
			Event: Summary{ID: rr.ID, Title: rr.Title, StartTime: rr.StartTime},
			Round: info,
		})
	}
	return out, nil
}

// LatestYear is the most recent year with events, or 0 when there are none.
func (r *Repository) LatestYear(ctx context.Context) (int, error) {
	var year sql.NullInt64
	if err := r.DB.WithContext(ctx).Table("events").Select("MAX(year)").Row().Scan(&year); err != nil {
		return 0, err
	}
	return int(year.Int64), nil
}
