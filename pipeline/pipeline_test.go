package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type seg struct {
	text  string
	final bool
}

type trackedIter struct {
	valuesIter[seg]
	closed bool
	err    error
}

func (it *trackedIter) Next(ctx context.Context) (seg, bool, error) {
	if it.err != nil && it.pos == len(it.items) {
		return seg{}, false, it.err
	}
	return it.valuesIter.Next(ctx)
}

func (it *trackedIter) Close() error {
	it.closed = true
	return nil
}

func texts(ss []seg) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.text
	}
	return out
}

func TestCollectOf(t *testing.T) {
	got, err := Collect(context.Background(), Of(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}

	got, err = Collect(context.Background(), Of[int]())
	if err != nil || len(got) != 0 {
		t.Errorf("empty stream: got %v, %v", got, err)
	}
}

func TestFilterFinals(t *testing.T) {
	src := &trackedIter{valuesIter: valuesIter[seg]{items: []seg{
		{"he", false}, {"hello", true}, {"wor", false}, {"world", true},
	}}}
	finals := Filter(From[seg](src), func(s seg) bool { return s.final })

	got, err := Collect(context.Background(), finals)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"hello", "world"}; !slices.Equal(texts(got), want) {
		t.Errorf("got %v, want %v", texts(got), want)
	}
	if !src.closed {
		t.Error("source not closed")
	}
}

func TestTapSeesOnlySurvivors(t *testing.T) {
	var tapped []int
	s := Filter(Of(1, 2, 3, 4), func(n int) bool { return n%2 == 0 })
	s = Tap(s, func(_ context.Context, n int) error {
		tapped = append(tapped, n)
		return nil
	})

	got, err := Collect(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 4}) || !slices.Equal(tapped, got) {
		t.Errorf("got %v, tapped %v", got, tapped)
	}
}

func TestTapErrorStops(t *testing.T) {
	boom := errors.New("metrics down")
	s := Tap(Of(1, 2, 3), func(_ context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})
	got, err := Collect(context.Background(), s)
	if !errors.Is(err, boom) {
		t.Fatalf("expected tap error, got %v", err)
	}
	if !slices.Equal(got, []int{1}) {
		t.Errorf("expected values before the error, got %v", got)
	}
}

func TestDrainSinkErrorClosesSource(t *testing.T) {
	src := &trackedIter{valuesIter: valuesIter[seg]{items: []seg{{"a", true}, {"b", true}, {"c", true}}}}
	boom := errors.New("send failed")

	var sent []string
	err := Drain(context.Background(), From[seg](src), func(_ context.Context, s seg) error {
		sent = append(sent, s.text)
		if s.text == "b" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if !slices.Equal(sent, []string{"a", "b"}) {
		t.Errorf("sent %v", sent)
	}
	if !src.closed {
		t.Error("source not closed")
	}
}

func TestDrainSourceError(t *testing.T) {
	boom := errors.New("decoder failed")
	src := &trackedIter{valuesIter: valuesIter[seg]{items: []seg{{"a", false}}}, err: boom}

	var n int
	err := Drain(context.Background(), From[seg](src), func(context.Context, seg) error {
		n++
		return nil
	})
	if !errors.Is(err, boom) || n != 1 {
		t.Fatalf("got err=%v after %d values", err, n)
	}
	if !src.closed {
		t.Error("source not closed")
	}
}

func TestDrainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Drain(ctx, Of(1), func(context.Context, int) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("sink called after cancellation")
	}
}
