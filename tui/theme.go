package tui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Theme defines the color palette and visual properties for the chat TUI.
type Theme struct {
	Root      lipgloss.Style
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Timestamp lipgloss.Style
	Human     lipgloss.Style
	System    lipgloss.Style
	Thinking  lipgloss.Style
	InputBox  lipgloss.Style
	Body      lipgloss.Style

	// agentPalette is cycled through for automated senders so each agent
	// keeps a stable color across renders.
	agentPalette []lipgloss.Style
}

// DefaultTheme is the built-in dark-terminal color scheme.
func DefaultTheme() Theme {
	muted := lipgloss.Color("243")
	return Theme{
		Root:   lipgloss.NewStyle().Padding(0, 1),
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Footer: lipgloss.NewStyle().Foreground(muted),
		Timestamp: lipgloss.NewStyle().
			Foreground(muted),
		Human:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		System:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Thinking: lipgloss.NewStyle().Foreground(muted).Italic(true),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		Body: lipgloss.NewStyle(),
		agentPalette: []lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
	}
}

// SenderStyle returns the style for a sender name. The human and System get
// fixed styles; automated agents hash into the palette so the same name is
// always the same color.
func (t Theme) SenderStyle(sender, humanName string) lipgloss.Style {
	switch sender {
	case humanName:
		return t.Human
	case protocol.SenderSystem:
		return t.System
	}

	h := fnv.New32a()
	h.Write([]byte(sender))
	return t.agentPalette[h.Sum32()%uint32(len(t.agentPalette))]
}
