package unique

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type named struct {
	ID   uint
	Name string
}

type memorySaver struct {
	rows   map[string]uint
	nextID uint
	saved  [][]string
	reads  int
	failOn error
	racer  []string
	raced  bool
}

func newMemorySaver() *memorySaver {
	return &memorySaver{rows: map[string]uint{}, nextID: 1}
}

func (m *memorySaver) ReadMatching(_ context.Context, values []string) ([]*named, error) {
	m.reads++
	out := make([]*named, len(values))
	for i, v := range values {
		if id, ok := m.rows[v]; ok {
			out[i] = &named{ID: id, Name: v}
		}
	}
	return out, nil
}

func (m *memorySaver) BulkSave(_ context.Context, values []string) ([]uint, error) {
	if m.failOn != nil {
		return nil, m.failOn
	}
	if len(m.racer) > 0 && !m.raced {
		m.raced = true
		for _, v := range m.racer {
			m.rows[v] = m.nextID
			m.nextID++
		}
		return nil, ErrConflict
	}
	m.saved = append(m.saved, append([]string(nil), values...))
	ids := make([]uint, len(values))
	for i, v := range values {
		m.rows[v] = m.nextID
		ids[i] = m.nextID
		m.nextID++
	}
	return ids, nil
}

func build(id uint, v string) named { return named{ID: id, Name: v} }

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	saver := newMemorySaver()

	first, err := Resolve[string, named](ctx, saver, []string{"Board Game", "RPG"}, build)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := Resolve[string, named](ctx, saver, []string{"RPG", "LARP", "Board Game"}, build)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if second[0].ID != first[1].ID || second[2].ID != first[0].ID {
		t.Fatalf("overlapping values changed ids: first=%v second=%v", first, second)
	}
	want := [][]string{{"Board Game", "RPG"}, {"LARP"}}
	if !reflect.DeepEqual(saver.saved, want) {
		t.Fatalf("bulk save calls = %v, want %v", saver.saved, want)
	}
}

func TestResolveKeepsInputOrder(t *testing.T) {
	saver := newMemorySaver()
	saver.rows["b"] = 40
	saver.nextID = 100

	got, err := Resolve[string, named](context.Background(), saver, []string{"a", "b", "c"}, build)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []named{{100, "a"}, {40, "b"}, {101, "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveEmptyDoesNoIO(t *testing.T) {
	saver := newMemorySaver()
	got, err := Resolve[string, named](context.Background(), saver, nil, build)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 0 || saver.reads != 0 {
		t.Fatalf("expected no reads and no results, got %d reads and %v", saver.reads, got)
	}
}

func TestResolveRereadsAfterConflict(t *testing.T) {
	saver := newMemorySaver()
	saver.racer = []string{"Catan"}

	got, err := Resolve[string, named](context.Background(), saver, []string{"Catan", "Chess"}, build)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got[0].ID != 1 {
		t.Fatalf("expected concurrently inserted id 1 for Catan, got %d", got[0].ID)
	}
	if want := [][]string{{"Chess"}}; !reflect.DeepEqual(saver.saved, want) {
		t.Fatalf("bulk save calls = %v, want %v", saver.saved, want)
	}
}

func TestResolvePropagatesSaveError(t *testing.T) {
	boom := errors.New("boom")
	saver := newMemorySaver()
	saver.failOn = boom

	if _, err := Resolve[string, named](context.Background(), saver, []string{"x"}, build); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestFuncsAdapter(t *testing.T) {
	type key struct {
		Parent uint
		Name   string
	}
	var saved []key
	saver := Funcs[key, named]{
		Read: func(_ context.Context, values []key) ([]*named, error) {
			return make([]*named, len(values)), nil
		},
		Save: func(_ context.Context, values []key) ([]uint, error) {
			saved = append(saved, values...)
			ids := make([]uint, len(values))
			for i := range values {
				ids[i] = uint(i + 10)
			}
			return ids, nil
		},
	}

	got, err := Resolve(context.Background(), saver, []key{{1, "Hall A"}, {2, "Hall A"}}, func(id uint, k key) named {
		return named{ID: id, Name: k.Name}
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(saved) != 2 || got[0].ID != 10 || got[1].ID != 11 {
		t.Fatalf("same name under different parents must be saved separately: saved=%v got=%v", saved, got)
	}
}
