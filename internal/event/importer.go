package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharath018/gencon-schedule-backend/internal/gamemaster"
	"github.com/sharath018/gencon-schedule-backend/internal/location"
	"github.com/sharath018/gencon-schedule-backend/internal/metadata"
	"gorm.io/gorm"
)

// ErrInternal marks a broken invariant inside the import, such as a reference
// that was resolved but is missing from its lookup.
var ErrInternal = errors.New("internal import error")

// DuplicateGameIDError rejects a batch that names the same event twice.
type DuplicateGameIDError struct {
	GameID string
	Year   int
}

func (e *DuplicateGameIDError) Error() string {
	return fmt.Sprintf("game id %s appears more than once for %d", e.GameID, e.Year)
}

// ============================
// 🔌 Ports

type MetadataSaver interface {
	Save(ctx context.Context, toSave metadata.UniqueToSave) (metadata.Saved, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, ingests []location.Ingest) ([]location.Resolved, error)
}

type GameMasterSyncer interface {
	Sync(ctx context.Context, events []gamemaster.ForEvent) error
}

type Detector interface {
	BulkExists(ctx context.Context, gameIDs []string, year int) ([]*uint, error)
}

type Writer interface {
	BulkCreate(ctx context.Context, params []CreateParams) ([]uint, error)
	BulkUpdate(ctx context.Context, updates []Update) error
}

// Importer reconciles a batch of feed events against the catalog. It does
// not manage transactions: callers run it against a transaction handle so a
// failure leaves nothing behind.
type Importer struct {
	metadata    MetadataSaver
	locations   LocationResolver
	gameMasters GameMasterSyncer
	detector    Detector
	writer      Writer
}

func NewImporter(md MetadataSaver, locations LocationResolver, gameMasters GameMasterSyncer, detector Detector, writer Writer) *Importer {
	return &Importer{
		metadata:    md,
		locations:   locations,
		gameMasters: gameMasters,
		detector:    detector,
		writer:      writer,
	}
}

// NewGormImporter wires every port to its gorm repository on tx.
func NewGormImporter(tx *gorm.DB) *Importer {
	locations := location.NewRepository(tx)
	gms := gamemaster.NewRepository(tx)
	events := NewRepository(tx)
	return NewImporter(
		metadata.NewService(tx),
		location.NewService(locations, locations),
		gamemaster.NewReconciler(gms.Names(), gms),
		events,
		events,
	)
}

// Result is the outcome of one import. IDs are in input order.
type Result struct {
	IDs     []uint
	Created int
	Updated int
}

// Import stores the batch and returns the event IDs in input order.
func (im *Importer) Import(ctx context.Context, events []IngestEvent) ([]uint, error) {
	res, err := im.Run(ctx, events)
	if err != nil {
		return nil, err
	}
	return res.IDs, nil
}

// Run is Import with created/updated counts.
func (im *Importer) Run(ctx context.Context, events []IngestEvent) (Result, error) {
	if len(events) == 0 {
		return Result{IDs: []uint{}}, nil
	}
	if err := checkDuplicates(events); err != nil {
		return Result{}, err
	}

	// 1. reference metadata
	refs := make([]metadata.Refs, len(events))
	for i, e := range events {
		refs[i] = e.refs()
	}
	saved, err := im.metadata.Save(ctx, metadata.ExtractUnique(refs))
	if err != nil {
		return Result{}, fmt.Errorf("saving metadata: %w", err)
	}
	index := saved.Index()

	// 2. locations
	locationRefs, err := im.resolveLocations(ctx, events)
	if err != nil {
		return Result{}, fmt.Errorf("saving locations: %w", err)
	}

	// 3. existing events
	existing, err := im.detectExisting(ctx, events)
	if err != nil {
		return Result{}, fmt.Errorf("detecting existence: %w", err)
	}

	// 4. route to create or update
	var creates []CreateParams
	var createdAt []int
	var updates []Update
	for i, e := range events {
		params, err := buildParams(e, index, locationRefs)
		if err != nil {
			return Result{}, err
		}
		if existing[i] != nil {
			updates = append(updates, Update{ID: *existing[i], Params: params})
			continue
		}
		creates = append(creates, CreateParams{GameID: e.GameID, Year: e.Year(), UpdateParams: params})
		createdAt = append(createdAt, i)
	}

	created, err := im.writer.BulkCreate(ctx, creates)
	if err != nil {
		return Result{}, fmt.Errorf("writing events: %w", err)
	}
	if len(created) != len(creates) {
		return Result{}, fmt.Errorf("%w: created %d events for %d rows", ErrInternal, len(created), len(creates))
	}
	if err := im.writer.BulkUpdate(ctx, updates); err != nil {
		return Result{}, fmt.Errorf("writing events: %w", err)
	}

	// 5. reassemble IDs in input order
	ids := make([]uint, len(events))
	for i, id := range existing {
		if id != nil {
			ids[i] = *id
		}
	}
	for j, i := range createdAt {
		ids[i] = created[j]
	}

	// 6. game masters
	forEvents := make([]gamemaster.ForEvent, len(events))
	for i, e := range events {
		forEvents[i] = gamemaster.ForEvent{EventID: ids[i], Names: e.GameMasters}
	}
	if err := im.gameMasters.Sync(ctx, forEvents); err != nil {
		return Result{}, fmt.Errorf("associating game masters: %w", err)
	}

	return Result{IDs: ids, Created: len(creates), Updated: len(updates)}, nil
}

func checkDuplicates(events []IngestEvent) error {
	type key struct {
		gameID string
		year   int
	}
	seen := make(map[key]bool, len(events))
	for _, e := range events {
		k := key{e.GameID, e.Year()}
		if seen[k] {
			return &DuplicateGameIDError{GameID: e.GameID, Year: k.year}
		}
		seen[k] = true
	}
	return nil
}

func (im *Importer) resolveLocations(ctx context.Context, events []IngestEvent) (map[location.Ingest]location.Ref, error) {
	var ingests []location.Ingest
	seen := map[location.Ingest]bool{}
	for _, e := range events {
		if e.Location != nil && !seen[*e.Location] {
			seen[*e.Location] = true
			ingests = append(ingests, *e.Location)
		}
	}
	if len(ingests) == 0 {
		return map[location.Ingest]location.Ref{}, nil
	}

	resolved, err := im.locations.Resolve(ctx, ingests)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(ingests) {
		return nil, fmt.Errorf("%w: resolved %d locations for %d inputs", ErrInternal, len(resolved), len(ingests))
	}
	out := make(map[location.Ingest]location.Ref, len(ingests))
	for i, in := range ingests {
		out[in] = resolved[i].Ref()
	}
	return out, nil
}

// detectExisting looks events up once per convention year in the batch.
func (im *Importer) detectExisting(ctx context.Context, events []IngestEvent) ([]*uint, error) {
	byYear := map[int][]int{}
	var years []int
	for i, e := range events {
		y := e.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], i)
	}

	out := make([]*uint, len(events))
	for _, y := range years {
		idx := byYear[y]
		gameIDs := make([]string, len(idx))
		for j, i := range idx {
			gameIDs[j] = events[i].GameID
		}
		found, err := im.detector.BulkExists(ctx, gameIDs, y)
		if err != nil {
			return nil, err
		}
		if len(found) != len(gameIDs) {
			return nil, fmt.Errorf("%w: existence check returned %d rows for %d ids", ErrInternal, len(found), len(gameIDs))
		}
		for j, i := range idx {
			out[i] = found[j]
		}
	}
	return out, nil
}

func buildParams(e IngestEvent, index metadata.Index, locations map[location.Ingest]location.Ref) (UpdateParams, error) {
	eventTypeID, ok := index.EventTypes[e.EventType]
	if !ok {
		return UpdateParams{}, fmt.Errorf("%w: event type %q was not resolved", ErrInternal, e.EventType)
	}

	p := UpdateParams{
		EventTypeID:      eventTypeID,
		Title:            e.Title,
		Description:      e.Description,
		Start:            e.Start,
		End:              e.End,
		Cost:             e.Cost,
		TicketsAvailable: e.TicketsAvailable,
		MinPlayers:       e.MinPlayers,
		MaxPlayers:       e.MaxPlayers,
		AgeRequirement:   e.AgeRequirement,
		ExperienceLevel:  e.ExperienceLevel,
		TableNumber:      e.TableNumber,
		Tournament:       e.Tournament,
	}
	lookups := []struct {
		kind  string
		value *string
		in    map[string]uint
		dst   **uint
	}{
		{"game system", e.GameSystem, index.GameSystems, &p.GameSystemID},
		{"materials", e.Materials, index.Materials, &p.MaterialsID},
		{"contact", e.Contact, index.Contacts, &p.ContactID},
		{"website", e.Website, index.Websites, &p.WebsiteID},
		{"group", e.Group, index.Groups, &p.GroupID},
	}

	for _, l := range lookups {
		if l.value == nil {
			continue
		}
		id, ok := l.in[*l.value]
		if !ok {
			return UpdateParams{}, fmt.Errorf("%w: %s %q was not resolved", ErrInternal, l.kind, *l.value)
		}
		*l.dst = &id
	}

	if e.Location != nil {
		ref, ok := locations[*e.Location]
		if !ok {
			return UpdateParams{}, fmt.Errorf("%w: location %+v was not resolved", ErrInternal, *e.Location)
		}
		p.Location = &ref
	}
	return p, nil
}
