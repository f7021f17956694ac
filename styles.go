package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	warning lipgloss.Style
}

// ANSI colors: 2 green, 3 yellow, 6 cyan, 7 white, 1 red.
func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(2)),
		label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)).Width(16),
		value:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(3)),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}
