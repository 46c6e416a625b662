package metadata

// ============================
// 🔷 Reference tables
// Every table stores one free-text value under a unique index.

type EventType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (EventType) TableName() string { return "event_types" }

type GameSystem struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (GameSystem) TableName() string { return "game_systems" }

type Contact struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
}

func (Contact) TableName() string { return "contacts" }

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (Group) TableName() string { return "event_groups" }

type Website struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	URL string `gorm:"column:url;type:text;not null;uniqueIndex" json:"url"`
}

func (Website) TableName() string { return "websites" }

type Materials struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Summary string `gorm:"type:text;not null;uniqueIndex" json:"summary"`
}

func (Materials) TableName() string { return "materials" }

// Models lists the reference tables for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&EventType{}, &GameSystem{}, &Contact{}, &Group{}, &Website{}, &Materials{},
	}
}

// ============================
// 🟡 Batch extraction

// Refs is the set of reference strings one incoming event points at.
// Optional references are nil when the feed left them blank.
type Refs struct {
	EventType  string
	GameSystem *string
	Contact    *string
	Group      *string
	Website    *string
	Materials  *string
}

// UniqueToSave holds the distinct values of each kind, in first-seen order.
type UniqueToSave struct {
	EventTypes  []string
	GameSystems []string
	Contacts    []string
	Groups      []string
	Websites    []string
	Materials   []string
}

// Saved holds the resolved rows, aligned with the UniqueToSave they came from.
type Saved struct {
	EventTypes  []EventType
	GameSystems []GameSystem
	Contacts    []Contact
	Groups      []Group
	Websites    []Website
	Materials   []Materials
}

// Index maps each saved value to its ID.
type Index struct {
	EventTypes  map[string]uint
	GameSystems map[string]uint
	Contacts    map[string]uint
	Groups      map[string]uint
	Websites    map[string]uint
	Materials   map[string]uint
}
