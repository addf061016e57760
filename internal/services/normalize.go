package services

import "strings"

// TrackArtist is an artist entry inside a raw track payload.
type TrackArtist struct {
	Name string `json:"name"`
}

// TrackPayload is the nested track object of an item page entry.
type TrackPayload struct {
	Name    string        `json:"name"`
	Artists []TrackArtist `json:"artists"`
}

// TrackItem is one entry of a playlist item page. Track is nil for
// entries the service could not resolve (removed or local files).
type TrackItem struct {
	Track *TrackPayload `json:"track"`
}

// NormalizeItem converts a raw item into the canonical search string
// "Artist1,Artist2 - Title". Artist names are joined with a bare comma.
// The format is the destination search query verbatim, so it must not
// drift.
//
// Items without a nested track are skipped: the second return is false
// and no placeholder is produced.
func NormalizeItem(item TrackItem) (string, bool) {
	if item.Track == nil {
		return "", false
	}

	names := make([]string, len(item.Track.Artists))
	for i, artist := range item.Track.Artists {
		names[i] = artist.Name
	}

	return strings.Join(names, ",") + " - " + item.Track.Name, true
}
