package location

import (
	"context"
	"fmt"

	"github.com/sharath018/gencon-schedule-backend/internal/unique"
)

type Service struct {
	reader Reader
	writer Writer
}

func NewService(reader Reader, writer Writer) *Service {
	return &Service{reader: reader, writer: writer}
}

// Resolve returns one Resolved per ingest, in input order and keeping
// duplicates. Buildings are resolved first, then rooms under their building
// IDs, then sections under their room IDs.
func (s *Service) Resolve(ctx context.Context, ingests []Ingest) ([]Resolved, error) {
	if len(ingests) == 0 {
		return []Resolved{}, nil
	}

	// Tier 1: buildings
	var names []string
	seenNames := map[string]bool{}
	for _, in := range ingests {
		if !seenNames[in.LocationName] {
			seenNames[in.LocationName] = true
			names = append(names, in.LocationName)
		}
	}
	locations, err := unique.Resolve(ctx, unique.Funcs[string, Location]{
		Read: s.reader.ReadLocations,
		Save: s.writer.SaveLocations,
	}, names, func(id uint, name string) Location {
		return Location{ID: id, Name: name}
	})
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	locationByName := make(map[string]Location, len(locations))
	for _, l := range locations {
		locationByName[l.Name] = l
	}

	// Tier 2: rooms keyed by building ID
	var roomKeys []RoomKey
	seenRooms := map[RoomKey]bool{}
	for _, in := range ingests {
		if in.Kind == KindLocation {
			continue
		}
		key := RoomKey{LocationID: locationByName[in.LocationName].ID, Name: in.RoomName}
		if !seenRooms[key] {
			seenRooms[key] = true
			roomKeys = append(roomKeys, key)
		}
	}
	rooms, err := unique.Resolve(ctx, unique.Funcs[RoomKey, Room]{
		Read: s.reader.ReadRooms,
		Save: s.writer.SaveRooms,
	}, roomKeys, func(id uint, key RoomKey) Room {
		return Room{ID: id, LocationID: key.LocationID, Name: key.Name}
	})
	if err != nil {
		return nil, fmt.Errorf("rooms: %w", err)
	}
	roomByKey := make(map[RoomKey]Room, len(rooms))
	for _, r := range rooms {
		roomByKey[RoomKey{LocationID: r.LocationID, Name: r.Name}] = r
	}

	// Tier 3: sections keyed by room ID
	var sectionKeys []SectionKey
	seenSections := map[SectionKey]bool{}
	for _, in := range ingests {
		if in.Kind != KindSection {
			continue
		}
		room := roomByKey[RoomKey{LocationID: locationByName[in.LocationName].ID, Name: in.RoomName}]
		key := SectionKey{RoomID: room.ID, Name: in.SectionName}
		if !seenSections[key] {
			seenSections[key] = true
			sectionKeys = append(sectionKeys, key)
		}
	}
	sections, err := unique.Resolve(ctx, unique.Funcs[SectionKey, Section]{
		Read: s.reader.ReadSections,
		Save: s.writer.SaveSections,
	}, sectionKeys, func(id uint, key SectionKey) Section {
		return Section{ID: id, RoomID: key.RoomID, Name: key.Name}
	})
	if err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}
	sectionByKey := make(map[SectionKey]Section, len(sections))
	for _, sec := range sections {
		sectionByKey[SectionKey{RoomID: sec.RoomID, Name: sec.Name}] = sec
	}

	// Reassemble without further I/O
	out := make([]Resolved, len(ingests))
	for i, in := range ingests {
		loc, ok := locationByName[in.LocationName]
		if !ok {
			return nil, fmt.Errorf("location %q missing after resolution", in.LocationName)
		}
		res := Resolved{Location: loc}

		if in.Kind != KindLocation {
			room, ok := roomByKey[RoomKey{LocationID: loc.ID, Name: in.RoomName}]
			if !ok {
				return nil, fmt.Errorf("room %q in %q missing after resolution", in.RoomName, in.LocationName)
			}
			res.Room = &room

			if in.Kind == KindSection {
				sec, ok := sectionByKey[SectionKey{RoomID: room.ID, Name: in.SectionName}]
				if !ok {
					return nil, fmt.Errorf("section %q in %q missing after resolution", in.SectionName, in.RoomName)
				}
				res.Section = &sec
			}
		}
		out[i] = res
	}
	return out, nil
}
