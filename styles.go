package main

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	flavor catppuccin.Flavor
	theme  string

	Header      lipgloss.Style
	Subtle      lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
	Section     lipgloss.Style
	SectionOpen lipgloss.Style
	Cursor      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Pane        lipgloss.Style
	Live        lipgloss.Style
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

func color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func NewStyles(themeName string) Styles {
	f := flavorFromName(themeName)

	tab := lipgloss.NewStyle().Padding(0, 1)

	return Styles{
		flavor: f,
		theme:  themeName,
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(color(f.Base())).
			Background(color(f.Mauve())).
			Padding(0, 1),
		Subtle: lipgloss.NewStyle().
			Foreground(color(f.Overlay1())),
		Status: lipgloss.NewStyle().
			Foreground(color(f.Teal())),
		Error: lipgloss.NewStyle().
			Foreground(color(f.Red())).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(color(f.Overlay0())),
		Section: lipgloss.NewStyle().
			Foreground(color(f.Text())),
		SectionOpen: lipgloss.NewStyle().
			Foreground(color(f.Peach())).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Foreground(color(f.Mauve())).
			Bold(true),
		ActiveTab: tab.
			Foreground(color(f.Base())).
			Background(color(f.Teal())).
			Bold(true),
		InactiveTab: tab.
			Foreground(color(f.Subtext0())).
			Background(color(f.Surface0())),
		Pane: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color(f.Surface2())).
			Padding(0, 1),
		Live: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color(f.Peach())).
			Padding(0, 1),
	}
}

// Dark reports whether the flavor has a dark background.
func (s Styles) Dark() bool {
	return s.theme != "latte"
}

// MethodStyle colors an HTTP method the way API docs usually do.
func (s Styles) MethodStyle(method string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch method {
	case "GET":
		return base.Foreground(color(s.flavor.Green()))
	case "POST":
		return base.Foreground(color(s.flavor.Blue()))
	case "PUT", "PATCH":
		return base.Foreground(color(s.flavor.Yellow()))
	case "DELETE":
		return base.Foreground(color(s.flavor.Red()))
	default:
		return base.Foreground(color(s.flavor.Overlay2()))
	}
}

// StatusCodeStyle colors a status code by class.
func (s Styles) StatusCodeStyle(code int) lipgloss.Style {
	switch {
	case code >= 500:
		return s.Error
	case code >= 400:
		return lipgloss.NewStyle().Foreground(color(s.flavor.Yellow())).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(color(s.flavor.Green())).Bold(true)
	}
}
