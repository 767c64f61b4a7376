package rating

import "testing"

func TestAggregate(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := Aggregate(nil)
		if s.Upvotes != 0 || s.Downvotes != 0 || s.Score != 0 {
			t.Errorf("expected zero summary, got %+v", s)
		}
	})

	t.Run("Mixed Votes", func(t *testing.T) {
		s := Aggregate([]Value{1, 1, -1})
		if s.Upvotes != 2 {
			t.Errorf("expected 2 upvotes, got %d", s.Upvotes)
		}
		if s.Downvotes != 1 {
			t.Errorf("expected 1 downvote, got %d", s.Downvotes)
		}
		if s.Score != 1 {
			t.Errorf("expected score 1, got %d", s.Score)
		}
	})

	t.Run("Zero Values Excluded", func(t *testing.T) {
		s := Aggregate([]Value{0, 1, 0, -1, 0})
		if s.Upvotes != 1 || s.Downvotes != 1 || s.Score != 0 {
			t.Errorf("expected {1 1 0}, got %+v", s)
		}
	})

	t.Run("Score Identity", func(t *testing.T) {
		cases := [][]Value{
			nil,
			{1},
			{-1},
			{1, 1, 1, -1, -1},
			{-1, -1, -1, -1},
			{5, -3, 2}, // any positive/negative magnitude counts once
		}
		for _, c := range cases {
			s := Aggregate(c)
			if s.Score != s.Upvotes-s.Downvotes {
				t.Errorf("score identity violated for %v: %+v", c, s)
			}
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("Vote From Unrated", func(t *testing.T) {
		next, change := Apply(None, Up)
		if next != Up {
			t.Errorf("expected Up, got %d", next)
		}
		if change.DeltaUp != 1 || change.DeltaDown != 0 {
			t.Errorf("unexpected change %+v", change)
		}
		if change.Retract() {
			t.Error("fresh vote should not be a retraction")
		}
	})

	t.Run("Toggle Law", func(t *testing.T) {
		// apply(apply(Unrated, v), v) == Unrated
		for _, v := range []Value{Up, Down} {
			mid, _ := Apply(None, v)
			next, change := Apply(mid, v)
			if next != None {
				t.Errorf("toggle of %d did not return to unrated, got %d", v, next)
			}
			if !change.Retract() {
				t.Error("toggle-off must be a retraction")
			}
		}
	})

	t.Run("Switch Vote", func(t *testing.T) {
		// apply(apply(Unrated, +1), -1) == Voted(-1)
		mid, first := Apply(None, Up)
		next, second := Apply(mid, Down)
		if next != Down {
			t.Errorf("expected Down, got %d", next)
		}

		// The aggregate must reflect exactly one net downvote.
		s := first.ApplyTo(Summary{})
		s = second.ApplyTo(s)
		if s.Upvotes != 0 || s.Downvotes != 1 || s.Score != -1 {
			t.Errorf("expected {0 1 -1}, got %+v", s)
		}
	})

	t.Run("Retraction Restores Counts", func(t *testing.T) {
		start := Summary{Upvotes: 3, Downvotes: 1, Score: 2}

		_, change := Apply(Down, Down)
		s := change.ApplyTo(start)
		if s.Downvotes != 0 || s.Upvotes != 3 || s.Score != 3 {
			t.Errorf("unexpected summary after retraction: %+v", s)
		}
	})

	t.Run("Invert Rolls Back", func(t *testing.T) {
		start := Summary{Upvotes: 2, Downvotes: 2, Score: 0}

		_, change := Apply(Up, Down)
		adjusted := change.ApplyTo(start)
		restored := change.Invert().ApplyTo(adjusted)
		if restored != start {
			t.Errorf("invert did not restore summary: %+v != %+v", restored, start)
		}
	})

	t.Run("Non Unit Values Normalized", func(t *testing.T) {
		next, change := Apply(None, Value(5))
		if next != Up || change.DeltaUp != 1 {
			t.Errorf("positive vote not normalized: next=%d change=%+v", next, change)
		}
	})
}
