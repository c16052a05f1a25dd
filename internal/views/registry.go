package views

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/autosense/senseboard/internal/router"
)

// Loading is the placeholder shown between unmounting one page and
// mounting the next.
type Loading struct {
	Base
	spin spinner.Model
}

func NewLoading(d Deps) router.View {
	s := spinner.New()
	s.Spinner = spinner.Spinner{Frames: SpinnerFrames, FPS: spinner.Dot.FPS}
	s.Style = lipgloss.NewStyle().Foreground(ColorWarning)
	return &Loading{Base: Base{Deps: d}, spin: s}
}

func (v *Loading) Render(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		v.spin.View()+" "+MutedStyle.Render("loading…"))
}

// Factories returns a constructor for every navigable page.
func Factories(d Deps) map[router.ID]router.Factory {
	bind := func(fn func(Deps) router.View) router.Factory {
		return func() router.View { return fn(d) }
	}
	return map[router.ID]router.Factory{
		router.Login:     bind(NewLogin),
		router.Home:      bind(NewHome),
		router.Cleaner:   bind(NewCleaner),
		router.Apps:      bind(NewApps),
		router.Security:  bind(NewSecurity),
		router.Optimizer: bind(NewOptimizer),
		router.Disk:      bind(NewDisk),
	}
}

// Placeholder returns the factory for the loading page.
func Placeholder(d Deps) router.Factory {
	return func() router.View { return NewLoading(d) }
}
