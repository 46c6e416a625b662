package metadata

import (
	"context"
	"fmt"

	"github.com/sharath018/gencon-schedule-backend/internal/unique"
	"gorm.io/gorm"
)

// Service resolves every reference kind of a batch against its own store.
type Service struct {
	EventTypes  unique.Saver[string, EventType]
	GameSystems unique.Saver[string, GameSystem]
	Contacts    unique.Saver[string, Contact]
	Groups      unique.Saver[string, Group]
	Websites    unique.Saver[string, Website]
	Materials   unique.Saver[string, Materials]
}

// NewService builds a Service backed by the reference tables reachable through db.
func NewService(db *gorm.DB) *Service {
	return &Service{
		EventTypes: NewStringRepository(db, "event_types", "name", func(id uint, v string) EventType {
			return EventType{ID: id, Name: v}
		}),
		GameSystems: NewStringRepository(db, "game_systems", "name", func(id uint, v string) GameSystem {
			return GameSystem{ID: id, Name: v}
		}),
		Contacts: NewStringRepository(db, "contacts", "email", func(id uint, v string) Contact {
			return Contact{ID: id, Email: v}
		}),
		Groups: NewStringRepository(db, "event_groups", "name", func(id uint, v string) Group {
			return Group{ID: id, Name: v}
		}),
		Websites: NewStringRepository(db, "websites", "url", func(id uint, v string) Website {
			return Website{ID: id, URL: v}
		}),
		Materials: NewStringRepository(db, "materials", "summary", func(id uint, v string) Materials {
			return Materials{ID: id, Summary: v}
		}),
	}
}

// ExtractUnique collects the distinct reference values of a batch.
func ExtractUnique(refs []Refs) UniqueToSave {
	var out UniqueToSave
	seen := map[*[]string]map[string]bool{}
	add := func(dst *[]string, v *string) {
		if v == nil {
			return
		}
		set, ok := seen[dst]
		if !ok {
			set = map[string]bool{}
			seen[dst] = set
		}
		if set[*v] {
			return
		}
		set[*v] = true
		*dst = append(*dst, *v)
	}

	for i := range refs {
		r := &refs[i]
		add(&out.EventTypes, &r.EventType)
		add(&out.GameSystems, r.GameSystem)
		add(&out.Contacts, r.Contact)
		add(&out.Groups, r.Group)
		add(&out.Websites, r.Website)
		add(&out.Materials, r.Materials)
	}
	return out
}

// ===========================
// 💾 Save all six kinds
func (s *Service) Save(ctx context.Context, toSave UniqueToSave) (Saved, error) {
	var (
		saved Saved
		err   error
	)

	if saved.EventTypes, err = unique.Resolve(ctx, s.EventTypes, toSave.EventTypes, func(id uint, v string) EventType {
		return EventType{ID: id, Name: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("event types: %w", err)
	}
	if saved.GameSystems, err = unique.Resolve(ctx, s.GameSystems, toSave.GameSystems, func(id uint, v string) GameSystem {
		return GameSystem{ID: id, Name: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("game systems: %w", err)
	}
	if saved.Contacts, err = unique.Resolve(ctx, s.Contacts, toSave.Contacts, func(id uint, v string) Contact {
		return Contact{ID: id, Email: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("contacts: %w", err)
	}
	if saved.Groups, err = unique.Resolve(ctx, s.Groups, toSave.Groups, func(id uint, v string) Group {
		return Group{ID: id, Name: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("groups: %w", err)
	}
	if saved.Websites, err = unique.Resolve(ctx, s.Websites, toSave.Websites, func(id uint, v string) Website {
		return Website{ID: id, URL: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("websites: %w", err)
	}
	if saved.Materials, err = unique.Resolve(ctx, s.Materials, toSave.Materials, func(id uint, v string) Materials {
		return Materials{ID: id, Summary: v}
	}); err != nil {
		return Saved{}, fmt.Errorf("materials: %w", err)
	}

	return saved, nil
}

// Index builds value->ID lookups. Keys are copies owned by the index.
func (s Saved) Index() Index {
	idx := Index{
		EventTypes:  make(map[string]uint, len(s.EventTypes)),
		GameSystems: make(map[string]uint, len(s.GameSystems)),
		Contacts:    make(map[string]uint, len(s.Contacts)),
		Groups:      make(map[string]uint, len(s.Groups)),
		Websites:    make(map[string]uint, len(s.Websites)),
		Materials:   make(map[string]uint, len(s.Materials)),
	}
	for _, v := range s.EventTypes {
		idx.EventTypes[v.Name] = v.ID
	}
	for _, v := range s.GameSystems {
		idx.GameSystems[v.Name] = v.ID
	}
	for _, v := range s.Contacts {
		idx.Contacts[v.Email] = v.ID
	}
	for _, v := range s.Groups {
		idx.Groups[v.Name] = v.ID
	}
	for _, v := range s.Websites {
		idx.Websites[v.URL] = v.ID
	}
	for _, v := range s.Materials {
		idx.Materials[v.Summary] = v.ID
	}
	return idx
}
