package location

// ============================
// 🔷 GORM models
// Rooms are unique per building, sections per room.

type Location struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

func (Location) TableName() string { return "locations" }

type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	LocationID uint   `gorm:"not null;uniqueIndex:idx_rooms_location_name,priority:1" json:"location_id"`
	Name       string `gorm:"type:varchar(255);not null;uniqueIndex:idx_rooms_location_name,priority:2" json:"name"`

	Location Location `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Room) TableName() string { return "rooms" }

type Section struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	RoomID uint   `gorm:"not null;uniqueIndex:idx_sections_room_name,priority:1" json:"room_id"`
	Name   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_sections_room_name,priority:2" json:"name"`

	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Section) TableName() string { return "sections" }

// Models lists the location tables for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&Location{}, &Room{}, &Section{}}
}

// ============================
// 🟡 Ingest

type Kind int

const (
	KindLocation Kind = iota
	KindRoom
	KindSection
)

// Ingest is a location reference as written in the feed. It is comparable so a
// batch can be deduplicated with a map.
type Ingest struct {
	Kind         Kind
	LocationName string
	RoomName     string
	SectionName  string
}

func NewLocationIngest(name string) Ingest {
	return Ingest{Kind: KindLocation, LocationName: name}
}

func NewRoomIngest(location, room string) Ingest {
	return Ingest{Kind: KindRoom, LocationName: location, RoomName: room}
}

func NewSectionIngest(location, room, section string) Ingest {
	return Ingest{Kind: KindSection, LocationName: location, RoomName: room, SectionName: section}
}

// RoomKey identifies a room by its parent building.
type RoomKey struct {
	LocationID uint
	Name       string
}

// SectionKey identifies a section by its parent room.
type SectionKey struct {
	RoomID uint
	Name   string
}

// ============================
// 🟢 Resolved

// Resolved is an ingest with every tier it names resolved to a stored row.
type Resolved struct {
	Location Location `json:"location"`
	Room     *Room    `json:"room,omitempty"`
	Section  *Section `json:"section,omitempty"`
}

// Ref is the ID-only projection stored on events.
type Ref struct {
	LocationID uint
	RoomID     *uint
	SectionID  *uint
}

func (r Resolved) Ref() Ref {
	ref := Ref{LocationID: r.Location.ID}
	if r.Room != nil {
		id := r.Room.ID
		ref.RoomID = &id
	}
	if r.Section != nil {
		id := r.Section.ID
		ref.SectionID = &id
	}
	return ref
}
