package event

import (
	"time"

	"github.com/sharath018/gencon-schedule-backend/internal/location"
	"github.com/sharath018/gencon-schedule-backend/internal/metadata"
	"github.com/sharath018/gencon-schedule-backend/internal/tournament"
)

// ============================
// 🔷 GORM Event Model
// (game_id, year) is the natural key; the feed reuses game ids across years.
type Event struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	GameID string `gorm:"type:varchar(32);not null;uniqueIndex:idx_events_game_year,priority:1" json:"game_id"`
	Year   int    `gorm:"not null;uniqueIndex:idx_events_game_year,priority:2;index" json:"year"`

	EventTypeID  uint  `gorm:"not null;index" json:"event_type_id"`
	GameSystemID *uint `gorm:"index" json:"game_system_id,omitempty"`

	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Cost        *int      `json:"cost,omitempty"`

	TicketsAvailable int `gorm:"not null;default:0" json:"tickets_available"`
	MinPlayers       int `gorm:"not null;default:0" json:"min_players"`
	MaxPlayers       int `gorm:"not null;default:0" json:"max_players"`

	AgeRequirement  AgeRequirement  `gorm:"type:smallint;not null" json:"age_requirement"`
	ExperienceLevel ExperienceLevel `gorm:"type:smallint;not null" json:"experience_level"`

	LocationID  *uint `gorm:"index" json:"location_id,omitempty"`
	RoomID      *uint `json:"room_id,omitempty"`
	SectionID   *uint `json:"section_id,omitempty"`
	TableNumber *int  `json:"table_number,omitempty"`

	MaterialsID *uint `json:"materials_id,omitempty"`
	ContactID   *uint `json:"contact_id,omitempty"`
	WebsiteID   *uint `json:"website_id,omitempty"`
	GroupID     *uint `json:"group_id,omitempty"`

	Round       *int `json:"round,omitempty"`
	TotalRounds *int `gorm:"index" json:"total_rounds,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	EventType  metadata.EventType   `gorm:"foreignKey:EventTypeID" json:"-"`
	GameSystem *metadata.GameSystem `gorm:"foreignKey:GameSystemID" json:"-"`
	Materials  *metadata.Materials  `gorm:"foreignKey:MaterialsID" json:"-"`
	Contact    *metadata.Contact    `gorm:"foreignKey:ContactID" json:"-"`
	Website    *metadata.Website    `gorm:"foreignKey:WebsiteID" json:"-"`
	Group      *metadata.Group      `gorm:"foreignKey:GroupID" json:"-"`
	Location   *location.Location   `gorm:"foreignKey:LocationID" json:"-"`
	Room       *location.Room       `gorm:"foreignKey:RoomID" json:"-"`
	Section    *location.Section    `gorm:"foreignKey:SectionID" json:"-"`
}

func (Event) TableName() string { return "events" }

// ============================
// 🟡 Ingest

// IngestEvent is one event from the feed, already validated and typed.
type IngestEvent struct {
	GameID string

	EventType   string
	GameSystem  *string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Cost        *int

	TicketsAvailable int
	MinPlayers       int
	MaxPlayers       int

	AgeRequirement  AgeRequirement
	ExperienceLevel ExperienceLevel

	Location    *location.Ingest
	TableNumber *int

	Materials *string
	Contact   *string
	Website   *string
	Group     *string

	Tournament  *tournament.RoundInfo
	GameMasters []string
}

// Year is the convention year the event belongs to.
func (e IngestEvent) Year() int {
	return e.Start.Year()
}

func (e IngestEvent) refs() metadata.Refs {
	return metadata.Refs{
		EventType:  e.EventType,
		GameSystem: e.GameSystem,
		Contact:    e.Contact,
		Group:      e.Group,
		Website:    e.Website,
		Materials:  e.Materials,
	}
}

// UpdateParams is an IngestEvent with every reference replaced by its ID.
// A nil Location clears the event's location.
type UpdateParams struct {
	EventTypeID  uint
	GameSystemID *uint

	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Cost        *int

	TicketsAvailable int
	MinPlayers       int
	MaxPlayers       int

	AgeRequirement  AgeRequirement
	ExperienceLevel ExperienceLevel

	Location    *location.Ref
	TableNumber *int

	MaterialsID *uint
	ContactID   *uint
	WebsiteID   *uint
	GroupID     *uint

	Tournament *tournament.RoundInfo
}

type CreateParams struct {
	GameID string
	Year   int
	UpdateParams
}

// Update pairs a stored event with its new values.
type Update struct {
	ID     uint
	Params UpdateParams
}

// ============================
// 🟢 Responses

type EventResponse struct {
	ID               uint       `json:"id"`
	GameID           string     `json:"game_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EventType        string     `json:"event_type"`
	GameSystem       *string    `json:"game_system,omitempty"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	Cost             *int       `json:"cost,omitempty"`
	TicketsAvailable int        `json:"tickets_available"`
	MinPlayers       int        `json:"min_players"`
	MaxPlayers       int        `json:"max_players"`
	AgeRequirement   string     `json:"age_requirement"`
	ExperienceLevel  string     `json:"experience_level"`
	Location         *string    `json:"location,omitempty"`
	Room             *string    `json:"room,omitempty"`
	Section          *string    `json:"section,omitempty"`
	TableNumber      *int       `json:"table_number,omitempty"`
	Materials        *string    `json:"materials,omitempty"`
	Contact          *string    `json:"contact,omitempty"`
	Website          *string    `json:"website,omitempty"`
	Group            *string    `json:"group,omitempty"`
	Round            *int       `json:"round,omitempty"`
	TotalRounds      *int       `json:"total_rounds,omitempty"`
	GameMasters      []string   `json:"game_masters"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type ListFilter struct {
	Year   int
	Day    *time.Time
	Search string
	Page   int
	Limit  int
}

type PaginatedEvents struct {
	Data       []EventResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// EventDay is one convention day that has events.
type EventDay struct {
	DayID int    `json:"day_id"`
	Date  string `json:"date"`
}
