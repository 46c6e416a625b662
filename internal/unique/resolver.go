package unique

import (
	"context"
	"errors"
	"fmt"
)

// ErrConflict is returned by a Saver when some of the requested values were
// inserted by someone else between the read and the write.
var ErrConflict = errors.New("unique: value inserted concurrently")

const maxAttempts = 3

// Saver is the persistence port behind Resolve. ReadMatching returns one entry
// per requested value, nil when the value is not stored yet. BulkSave stores
// the given values and returns their new IDs in the same order.
type Saver[K comparable, T any] interface {
	ReadMatching(ctx context.Context, values []K) ([]*T, error)
	BulkSave(ctx context.Context, values []K) ([]uint, error)
}

// Funcs adapts a pair of functions to the Saver interface.
type Funcs[K comparable, T any] struct {
	Read func(ctx context.Context, values []K) ([]*T, error)
	Save func(ctx context.Context, values []K) ([]uint, error)
}

func (f Funcs[K, T]) ReadMatching(ctx context.Context, values []K) ([]*T, error) {
	return f.Read(ctx, values)
}

func (f Funcs[K, T]) BulkSave(ctx context.Context, values []K) ([]uint, error) {
	return f.Save(ctx, values)
}

// Resolve returns one entity per value, in input order, creating the ones
// that do not exist yet. Values must already be deduplicated by the caller.
func Resolve[K comparable, T any](ctx context.Context, saver Saver[K, T], values []K, build func(id uint, value K) T) ([]T, error) {
	if len(values) == 0 {
		return []T{}, nil
	}

	resolved := make([]*T, len(values))
	pending := make([]int, len(values))
	for i := range values {
		pending[i] = i
	}

	for attempt := 1; ; attempt++ {
		lookup := make([]K, len(pending))
		for i, idx := range pending {
			lookup[i] = values[idx]
		}

		found, err := saver.ReadMatching(ctx, lookup)
		if err != nil {
			return nil, fmt.Errorf("reading existing values: %w", err)
		}
		if len(found) != len(lookup) {
			return nil, fmt.Errorf("reading existing values: got %d results for %d values", len(found), len(lookup))
		}

		var missing []int
		for i, idx := range pending {
			if found[i] != nil {
				resolved[idx] = found[i]
				continue
			}
			missing = append(missing, idx)
		}
		if len(missing) == 0 {
			break
		}

		toSave := make([]K, len(missing))
		for i, idx := range missing {
			toSave[i] = values[idx]
		}

		ids, err := saver.BulkSave(ctx, toSave)
		if errors.Is(err, ErrConflict) && attempt < maxAttempts {
			pending = missing
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("saving new values: %w", err)
		}
		if len(ids) != len(toSave) {
			return nil, fmt.Errorf("saving new values: got %d ids for %d values", len(ids), len(toSave))
		}

		for i, idx := range missing {
			entity := build(ids[i], values[idx])
			resolved[idx] = &entity
		}
		break
	}

	out := make([]T, len(values))
	for i, entity := range resolved {
		out[i] = *entity
	}
	return out, nil
}
