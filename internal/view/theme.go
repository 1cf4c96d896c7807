// Package view renders view-model state for the terminal.
package view

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/frahmantamala/office-ticketing/internal/ticket"
)

// Theme is the palette used by every renderer. Colors are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	ErrorText        lipgloss.Color
	OverdueText      lipgloss.Color

	StatusColors   map[ticket.Status]lipgloss.Color
	PriorityColors map[ticket.Priority]lipgloss.Color
}

func (t Theme) StatusColor(s ticket.Status) lipgloss.Color {
	if c, ok := t.StatusColors[s]; ok {
		return c
	}
	return t.FaintText
}

func (t Theme) PriorityColor(p ticket.Priority) lipgloss.Color {
	if c, ok := t.PriorityColors[p]; ok {
		return c
	}
	return t.NormalText
}

// DefaultTheme targets dark 256-color terminals.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	ErrorText:        lipgloss.Color("196"),
	OverdueText:      lipgloss.Color("208"),

	StatusColors: map[ticket.Status]lipgloss.Color{
		ticket.StatusNew:        lipgloss.Color("75"),
		ticket.StatusOpen:       lipgloss.Color("114"), // green
		ticket.StatusReopened:   lipgloss.Color("114"),
		ticket.StatusInProgress: lipgloss.Color("220"), // amber
		ticket.StatusOnHold:     lipgloss.Color("141"),
		ticket.StatusResolved:   lipgloss.Color("245"),
		ticket.StatusClosed:     lipgloss.Color("240"),
	},
	PriorityColors: map[ticket.Priority]lipgloss.Color{
		ticket.PriorityCritical: lipgloss.Color("196"),
		ticket.PriorityHigh:     lipgloss.Color("208"),
		ticket.PriorityMedium:   lipgloss.Color("75"),
		ticket.PriorityLow:      lipgloss.Color("245"),
	},
}
