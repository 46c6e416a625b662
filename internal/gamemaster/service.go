package gamemaster

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sharath018/gencon-schedule-backend/internal/unique"
)

// Reconciler makes every event's stored game masters match the requested names.
type Reconciler struct {
	names unique.Saver[string, GameMaster]
	links Associations
}

func NewReconciler(names unique.Saver[string, GameMaster], links Associations) *Reconciler {
	return &Reconciler{names: names, links: links}
}

// Sync adds and removes links so each event ends up with exactly the named
// game masters. It stops at the first failing event; earlier events keep their
// changes, so callers run it inside a transaction.
func (r *Reconciler) Sync(ctx context.Context, events []ForEvent) error {
	if len(events) == 0 {
		return nil
	}

	var names []string
	seen := map[string]bool{}
	for _, e := range events {
		for _, n := range e.Names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	gms, err := unique.Resolve(ctx, r.names, names, func(id uint, name string) GameMaster {
		return GameMaster{ID: id, Name: name}
	})
	if err != nil {
		return fmt.Errorf("resolving game master names: %w", err)
	}
	idByName := make(map[string]uint, len(gms))
	for _, gm := range gms {
		idByName[gm.Name] = gm.ID
	}

	var eventIDs []uint
	seenEvents := map[uint]bool{}
	for _, e := range events {
		if !seenEvents[e.EventID] {
			seenEvents[e.EventID] = true
			eventIDs = append(eventIDs, e.EventID)
		}
	}

	existing, err := r.links.Existing(ctx, eventIDs)
	if err != nil {
		return classify(err, "reading existing game masters")
	}
	if len(existing) < len(eventIDs) {
		return &GamesDoNotExistError{Requested: len(eventIDs), Existing: len(existing)}
	}

	for _, e := range events {
		desired := make(map[uint]bool, len(e.Names))
		for _, n := range e.Names {
			desired[idByName[n]] = true
		}
		current := make(map[uint]bool, len(existing[e.EventID]))
		for _, id := range existing[e.EventID] {
			current[id] = true
		}

		toAdd := difference(desired, current)
		toRemove := difference(current, desired)

		if len(toAdd) > 0 {
			if err := r.links.Add(ctx, e.EventID, toAdd); err != nil {
				return classify(err, fmt.Sprintf("adding game masters to event %d", e.EventID))
			}
		}
		if len(toRemove) > 0 {
			if err := r.links.Remove(ctx, e.EventID, toRemove); err != nil {
				return classify(err, fmt.Sprintf("removing game masters from event %d", e.EventID))
			}
		}

		next := make([]uint, 0, len(desired))
		for id := range desired {
			next = append(next, id)
		}
		existing[e.EventID] = next
	}
	return nil
}

// difference returns the sorted IDs in a but not in b.
func difference(a, b map[uint]bool) []uint {
	var out []uint
	for id := range a {
		if !b[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// classify passes domain errors through and wraps everything else.
func classify(err error, action string) error {
	var (
		games  *GamesDoNotExistError
		game   *GameDoesNotExistError
		master *GameMasterDoesNotExistError
	)
	if errors.As(err, &games) || errors.As(err, &game) || errors.As(err, &master) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}
