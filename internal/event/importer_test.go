package event

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sharath018/gencon-schedule-backend/internal/gamemaster"
	"github.com/sharath018/gencon-schedule-backend/internal/location"
	"github.com/sharath018/gencon-schedule-backend/internal/metadata"
)

// fakeStore backs every importer port and records the order they were called in.
type fakeStore struct {
	calls []string

	existing map[string]uint // game id -> event id
	nextID   uint

	created []CreateParams
	updated []Update
	synced  []gamemaster.ForEvent

	dropEventType bool
	metadataErr   error
	updateErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: map[string]uint{}, nextID: 500}
}

func (f *fakeStore) Save(_ context.Context, toSave metadata.UniqueToSave) (metadata.Saved, error) {
	f.calls = append(f.calls, "metadata")
	if f.metadataErr != nil {
		return metadata.Saved{}, f.metadataErr
	}
	var saved metadata.Saved
	if !f.dropEventType {
		for i, v := range toSave.EventTypes {
			saved.EventTypes = append(saved.EventTypes, metadata.EventType{ID: uint(i + 1), Name: v})
		}
	}
	for i, v := range toSave.GameSystems {
		saved.GameSystems = append(saved.GameSystems, metadata.GameSystem{ID: uint(i + 10), Name: v})
	}
	for i, v := range toSave.Contacts {
		saved.Contacts = append(saved.Contacts, metadata.Contact{ID: uint(i + 20), Email: v})
	}
	return saved, nil
}

func (f *fakeStore) Resolve(_ context.Context, ingests []location.Ingest) ([]location.Resolved, error) {
	f.calls = append(f.calls, "locations")
	out := make([]location.Resolved, len(ingests))
	for i, in := range ingests {
		out[i] = location.Resolved{Location: location.Location{ID: uint(i + 1), Name: in.LocationName}}
	}
	return out, nil
}

func (f *fakeStore) Sync(_ context.Context, events []gamemaster.ForEvent) error {
	f.calls = append(f.calls, "gamemasters")
	f.synced = events
	return nil
}

func (f *fakeStore) BulkExists(_ context.Context, gameIDs []string, _ int) ([]*uint, error) {
	f.calls = append(f.calls, "exists")
	out := make([]*uint, len(gameIDs))
	for i, g := range gameIDs {
		if id, ok := f.existing[g]; ok {
			out[i] = &id
		}
	}
	return out, nil
}

func (f *fakeStore) BulkCreate(_ context.Context, params []CreateParams) ([]uint, error) {
	f.calls = append(f.calls, "create")
	f.created = params
	ids := make([]uint, len(params))
	for i := range params {
		f.nextID++
		ids[i] = f.nextID
	}
	return ids, nil
}

func (f *fakeStore) BulkUpdate(_ context.Context, updates []Update) error {
	f.calls = append(f.calls, "update")
	f.updated = updates
	return f.updateErr
}

func (f *fakeStore) importer() *Importer {
	return NewImporter(f, f, f, f, f)
}

func ingest(gameID string, year int, gms ...string) IngestEvent {
	contact := "gm@example.org"
	loc := location.NewRoomIngest("ICC", "Hall D")
	return IngestEvent{
		GameID:      gameID,
		EventType:   "RPG",
		Title:       gameID,
		Start:       time.Date(year, 8, 1, 9, 0, 0, 0, time.UTC),
		End:         time.Date(year, 8, 1, 13, 0, 0, 0, time.UTC),
		Contact:     &contact,
		Location:    &loc,
		GameMasters: gms,
	}
}

func TestImporterRoutesCreatesAndUpdates(t *testing.T) {
	store := newFakeStore()
	store.existing["B"] = 42

	res, err := store.importer().Run(context.Background(), []IngestEvent{
		ingest("A", 2024, "Ann"),
		ingest("B", 2024),
		ingest("C", 2024, "Bo", "Cy"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := []uint{501, 42, 502}; !reflect.DeepEqual(res.IDs, want) {
		t.Errorf("ids = %v, want %v", res.IDs, want)
	}
	if res.Created != 2 || res.Updated != 1 {
		t.Errorf("created/updated = %d/%d", res.Created, res.Updated)
	}
	if want := []string{"metadata", "locations", "exists", "create", "update", "gamemasters"}; !reflect.DeepEqual(store.calls, want) {
		t.Errorf("calls = %v, want %v", store.calls, want)
	}

	if store.created[0].GameID != "A" || store.created[0].Year != 2024 {
		t.Errorf("created = %+v", store.created[0])
	}
	if store.created[0].ContactID == nil || *store.created[0].ContactID != 20 {
		t.Errorf("contact not resolved: %+v", store.created[0].ContactID)
	}
	if store.updated[0].ID != 42 || store.updated[0].Params.Location == nil {
		t.Errorf("updated = %+v", store.updated[0])
	}

	// every event is synced so removed game masters are dropped too
	if len(store.synced) != 3 || store.synced[1].EventID != 42 || store.synced[1].Names != nil {
		t.Errorf("synced = %+v", store.synced)
	}
}

func TestImporterDetectsExistencePerYear(t *testing.T) {
	store := newFakeStore()
	_, err := store.importer().Run(context.Background(), []IngestEvent{
		ingest("A", 2023),
		ingest("A", 2024),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	exists := 0
	for _, c := range store.calls {
		if c == "exists" {
			exists++
		}
	}
	if exists != 2 {
		t.Errorf("BulkExists called %d times, want 2", exists)
	}
}

func TestImporterEmptyBatch(t *testing.T) {
	store := newFakeStore()
	ids, err := store.importer().Import(context.Background(), nil)
	if err != nil || len(ids) != 0 {
		t.Fatalf("ids = %v, err = %v", ids, err)
	}
	if len(store.calls) != 0 {
		t.Errorf("empty batch touched the store: %v", store.calls)
	}
}

func TestImporterErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		setup  func(*fakeStore)
		events []IngestEvent
		check  func(t *testing.T, err error)
	}{
		{
			name:   "duplicate game id",
			events: []IngestEvent{ingest("A", 2024), ingest("A", 2024)},
			check: func(t *testing.T, err error) {
				var dup *DuplicateGameIDError
				if !errors.As(err, &dup) || dup.GameID != "A" {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "metadata failure",
			setup:  func(f *fakeStore) { f.metadataErr = boom },
			events: []IngestEvent{ingest("A", 2024)},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "saving metadata") {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "update failure",
			setup:  func(f *fakeStore) { f.existing["A"] = 1; f.updateErr = boom },
			events: []IngestEvent{ingest("A", 2024)},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "writing events") {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "unresolved reference",
			setup:  func(f *fakeStore) { f.dropEventType = true },
			events: []IngestEvent{ingest("A", 2024)},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrInternal) {
					t.Errorf("err = %v", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.setup != nil {
				tt.setup(store)
			}
			_, err := store.importer().Run(context.Background(), tt.events)
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}
