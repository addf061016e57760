package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/senyafy/internal/services"
)

var (
	_ list.Item = playlistEntry{}
	_ list.Item = trackEntry{}
)

// playlistEntry wraps [services.PlaylistMeta] to implement [list.Item].
type playlistEntry struct {
	meta services.PlaylistMeta
}

func (e playlistEntry) FilterValue() string { return e.meta.Name }
func (e playlistEntry) Title() string       { return e.meta.Name }
func (e playlistEntry) Description() string {
	if e.meta.Tracks == nil {
		return "no track collection"
	}
	return fmt.Sprintf("%d tracks", e.meta.Tracks.Total)
}

// trackEntry wraps a normalized track string to implement [list.Item].
type trackEntry struct {
	entry    string
	position int
}

func (e trackEntry) FilterValue() string { return e.entry }
func (e trackEntry) Title() string       { return e.entry }
func (e trackEntry) Description() string { return fmt.Sprintf("#%d", e.position+1) }
