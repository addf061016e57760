package services

import "testing"

func TestNormalizeItem(t *testing.T) {
	t.Run("single artist", func(t *testing.T) {
		item := TrackItem{Track: &TrackPayload{
			Name:    "Track 1",
			Artists: []TrackArtist{{Name: "Artist 1"}},
		}}

		got, ok := NormalizeItem(item)
		if !ok {
			t.Fatal("expected item to normalize")
		}
		if got != "Artist 1 - Track 1" {
			t.Errorf("expected %q, got %q", "Artist 1 - Track 1", got)
		}
	})

	t.Run("multiple artists joined with bare comma", func(t *testing.T) {
		item := TrackItem{Track: &TrackPayload{
			Name:    "Collab",
			Artists: []TrackArtist{{Name: "First"}, {Name: "Second"}},
		}}

		got, ok := NormalizeItem(item)
		if !ok {
			t.Fatal("expected item to normalize")
		}
		if got != "First,Second - Collab" {
			t.Errorf("expected %q, got %q", "First,Second - Collab", got)
		}
	})

	t.Run("item without nested track is dropped", func(t *testing.T) {
		if got, ok := NormalizeItem(TrackItem{}); ok {
			t.Errorf("expected item to be skipped, got %q", got)
		}
	})

	t.Run("no artists still formats", func(t *testing.T) {
		item := TrackItem{Track: &TrackPayload{Name: "Orphan"}}

		got, ok := NormalizeItem(item)
		if !ok {
			t.Fatal("expected item to normalize")
		}
		if got != " - Orphan" {
			t.Errorf("expected %q, got %q", " - Orphan", got)
		}
	})
}
