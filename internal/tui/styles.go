package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the browse view.
type Styles struct {
	Header      lipgloss.Style
	Card        lipgloss.Style
	InfoText    lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
	MutedText   lipgloss.Style
	Status      lipgloss.Style
}

// DefaultStyles returns the dark palette used by the browser.
func DefaultStyles() *Styles {
	primary := lipgloss.Color("#7aa2f7")
	success := lipgloss.Color("#9ece6a")
	errorColor := lipgloss.Color("#f7768e")
	muted := lipgloss.Color("#565f89")
	foreground := lipgloss.Color("#c0caf5")
	background := lipgloss.Color("#1a1b26")

	return &Styles{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(1, 2),
		InfoText:    lipgloss.NewStyle().Foreground(foreground),
		SuccessText: lipgloss.NewStyle().Foreground(success),
		ErrorText:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		MutedText:   lipgloss.NewStyle().Foreground(muted),
		Status:      lipgloss.NewStyle().Foreground(primary).MarginTop(1),
	}
}
