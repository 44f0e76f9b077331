package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ytbeets/internal/models"
)

// Colors names the picker's palette entries as hex strings.
type Colors struct {
	Title   string
	OK      string
	Error   string
	Warn    string
	Muted   string
	Album   string
	Song    string
	BadgeFg string
}

var styles = NewPalette(Colors{
	Title:   "#7D56F4",
	OK:      "#04B575",
	Error:   "#FF5F56",
	Warn:    "#FFA500",
	Muted:   "#626262",
	Album:   "#7D56F4",
	Song:    "#E85D9E",
	BadgeFg: "#FAFAFA",
})

// Palette holds the rendered styles of the picker.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	album lipgloss.Style
	song  lipgloss.Style
}

// NewPalette builds the picker styles from c.
func NewPalette(c Colors) *Palette {
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color(c.BadgeFg)).Bold(true).Padding(0, 1)
	return &Palette{
		title: bold(c.Title).MarginBottom(1),
		ok:    bold(c.OK),
		err:   bold(c.Error),
		warn:  fg(c.Warn),
		help:  fg(c.Muted).Italic(true),
		album: badge.Background(lipgloss.Color(c.Album)),
		song:  badge.Background(lipgloss.Color(c.Song)),
	}
}

// badge renders the search mode label for kind.
func (p *Palette) badge(kind models.Kind) string {
	if kind == models.KindTrack {
		return p.song.Render("songs")
	}
	return p.album.Render("albums")
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
