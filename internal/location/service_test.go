package location

import (
	"context"
	"fmt"
	"testing"

	"github.com/sharath018/gencon-schedule-backend/database"
)

// memoryStore is an in-memory Reader and Writer that counts inserts.
type memoryStore struct {
	nextID   uint
	inserts  int
	location map[string]uint
	rooms    map[RoomKey]uint
	sections map[SectionKey]uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID:   1,
		location: map[string]uint{},
		rooms:    map[RoomKey]uint{},
		sections: map[SectionKey]uint{},
	}
}

func (m *memoryStore) id() uint {
	m.nextID++
	return m.nextID - 1
}

func (m *memoryStore) ReadLocations(_ context.Context, names []string) ([]*Location, error) {
	out := make([]*Location, len(names))
	for i, n := range names {
		if id, ok := m.location[n]; ok {
			out[i] = &Location{ID: id, Name: n}
		}
	}
	return out, nil
}

func (m *memoryStore) ReadRooms(_ context.Context, keys []RoomKey) ([]*Room, error) {
	out := make([]*Room, len(keys))
	for i, k := range keys {
		if id, ok := m.rooms[k]; ok {
			out[i] = &Room{ID: id, LocationID: k.LocationID, Name: k.Name}
		}
	}
	return out, nil
}

func (m *memoryStore) ReadSections(_ context.Context, keys []SectionKey) ([]*Section, error) {
	out := make([]*Section, len(keys))
	for i, k := range keys {
		if id, ok := m.sections[k]; ok {
			out[i] = &Section{ID: id, RoomID: k.RoomID, Name: k.Name}
		}
	}
	return out, nil
}

func (m *memoryStore) SaveLocations(_ context.Context, names []string) ([]uint, error) {
	ids := make([]uint, len(names))
	for i, n := range names {
		ids[i] = m.id()
		m.location[n] = ids[i]
		m.inserts++
	}
	return ids, nil
}

func (m *memoryStore) SaveRooms(_ context.Context, keys []RoomKey) ([]uint, error) {
	ids := make([]uint, len(keys))
	for i, k := range keys {
		ids[i] = m.id()
		m.rooms[k] = ids[i]
		m.inserts++
	}
	return ids, nil
}

func (m *memoryStore) SaveSections(_ context.Context, keys []SectionKey) ([]uint, error) {
	ids := make([]uint, len(keys))
	for i, k := range keys {
		ids[i] = m.id()
		m.sections[k] = ids[i]
		m.inserts++
	}
	return ids, nil
}

func hyattIngests() []Ingest {
	return []Ingest{
		NewLocationIngest("Hyatt"),
		NewRoomIngest("Hyatt", "Ballroom A"),
		NewSectionIngest("Hyatt", "Ballroom A", "Left Half"),
	}
}

func TestResolveHierarchyRoundTrip(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, store)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, hyattIngests())
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if store.inserts != 3 {
		t.Fatalf("expected 3 inserts, got %d", store.inserts)
	}

	if first[0].Room != nil || first[0].Section != nil {
		t.Errorf("bare location must not carry a room: %+v", first[0])
	}
	if first[1].Room == nil || first[1].Section != nil {
		t.Errorf("room ingest must carry only a room: %+v", first[1])
	}
	if first[2].Room == nil || first[2].Section == nil {
		t.Fatalf("section ingest must carry room and section: %+v", first[2])
	}
	if !(first[0].Location.ID < first[1].Room.ID && first[1].Room.ID < first[2].Section.ID) {
		t.Errorf("expected monotonically assigned ids, got %d %d %d", first[0].Location.ID, first[1].Room.ID, first[2].Section.ID)
	}
	if first[2].Section.Name != "Left Half" || first[2].Room.Name != "Ballroom A" {
		t.Errorf("names swapped: %+v", first[2])
	}

	second, err := svc.Resolve(ctx, hyattIngests())
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if store.inserts != 3 {
		t.Fatalf("re-resolving must not insert, got %d inserts", store.inserts)
	}
	if second[0].Location.ID != first[0].Location.ID ||
		second[1].Room.ID != first[1].Room.ID ||
		second[2].Section.ID != first[2].Section.ID {
		t.Fatalf("ids changed between resolutions: %+v vs %+v", first, second)
	}
}

func TestResolveKeepsDuplicatesAndOrder(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, store)

	in := []Ingest{
		NewRoomIngest("ICC", "Hall D"),
		NewLocationIngest("Lucas Oil"),
		NewRoomIngest("ICC", "Hall D"),
	}
	got, err := svc.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Room.ID != got[2].Room.ID {
		t.Errorf("duplicate ingests resolved differently: %d vs %d", got[0].Room.ID, got[2].Room.ID)
	}
	if got[1].Location.Name != "Lucas Oil" {
		t.Errorf("order not kept: %+v", got[1])
	}
	if store.inserts != 3 {
		t.Errorf("expected 2 buildings + 1 room inserted, got %d", store.inserts)
	}
}

func TestSameRoomNameInDifferentBuildingsOnDatabase(t *testing.T) {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := NewRepository(db)
	svc := NewService(repo, repo)
	ctx := context.Background()

	in := []Ingest{
		NewSectionIngest("Hyatt", "Room 101", "Back"),
		NewSectionIngest("Marriott", "Room 101", "Back"),
	}
	got, err := svc.Resolve(ctx, in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got[0].Room.ID == got[1].Room.ID {
		t.Fatalf("rooms in different buildings must not collide")
	}
	if got[0].Section.ID == got[1].Section.ID {
		t.Fatalf("sections in different rooms must not collide")
	}

	again, err := svc.Resolve(ctx, in)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	for i := range in {
		if again[i].Ref().SectionID == nil || *again[i].Ref().SectionID != got[i].Section.ID {
			t.Fatalf("section %d changed id on re-resolve", i)
		}
	}

	var rooms int64
	db.Model(&Room{}).Count(&rooms)
	if rooms != 2 {
		t.Fatalf("expected 2 rooms stored, got %d", rooms)
	}
}
