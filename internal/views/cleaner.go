package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
)

// Cleaner shows removable junk and the largest files on the machine.
type Cleaner struct {
	Base
	selected cursor
}

func NewCleaner(d Deps) router.View {
	return &Cleaner{Base: Base{Deps: d}}
}

func (v *Cleaner) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagJunk, Load: loader(v.Store, TagJunk, v.Client.ScanJunk)},
		{Tag: TagLargeFiles, Load: loader(v.Store, TagLargeFiles, func(ctx context.Context) ([]api.LargeFile, error) {
			return v.Client.LargeFiles(ctx, "")
		})},
	}
}

func (v *Cleaner) Bindings() []key.Binding {
	return []key.Binding{keyScan, keyClean, keyUp, keyDown, keyDelete}
}

func (v *Cleaner) files() []api.LargeFile {
	files, _ := Value[[]api.LargeFile](v.Store, TagLargeFiles)
	return files
}

func (v *Cleaner) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.HandleConfirm(msg) {
		return true, nil
	}
	files := v.files()
	switch {
	case key.Matches(msg, keyScan):
		v.reload(TagJunk, TagLargeFiles)
	case key.Matches(msg, keyClean):
		junk, ok := Value[api.JunkScan](v.Store, TagJunk)
		if !ok || junk.FileCount == 0 {
			v.Store.SetNotice("Nothing to clean", false)
			return true, nil
		}
		v.Confirm(fmt.Sprintf("Delete %d junk files (%s)?", junk.FileCount, FormatMB(junk.TotalSizeMB)), func() {
			v.Action("Clean junk", v.Client.CleanJunk, TagJunk)
		})
	case key.Matches(msg, keyUp):
		v.selected.move(-1, len(files))
	case key.Matches(msg, keyDown):
		v.selected.move(1, len(files))
	case key.Matches(msg, keyDelete):
		if len(files) == 0 {
			return true, nil
		}
		f := files[v.selected.index(len(files))]
		v.Confirm("Delete "+f.Path+"?", func() {
			v.Action("Delete "+f.Name, func(ctx context.Context) (api.ActionResult, error) {
				return v.Client.DeleteLargeFile(ctx, f.Path)
			}, TagLargeFiles)
		})
	default:
		return false, nil
	}
	return true, nil
}

func (v *Cleaner) Render(width, height int) string {
	inner := contentWidth(width)
	var parts []string

	var junk string
	if line, missing := placeholder(v.Store, TagJunk); missing {
		junk = line
	} else {
		js, _ := Value[api.JunkScan](v.Store, TagJunk)
		if js.FileCount == 0 {
			junk = OKStyle.Render("✓ No junk found")
		} else {
			junk = fmt.Sprintf("%s %s",
				ValueStyle.Render(fmt.Sprintf("%d files", js.FileCount)),
				WarningStyle.Render(FormatMB(js.TotalSizeMB)+" reclaimable"))
			for i, f := range js.Files {
				if i == 3 {
					junk += "\n" + MutedStyle.Render(fmt.Sprintf("… and %d more", js.FileCount-3))
					break
				}
				junk += "\n" + MutedStyle.Render(truncate(f.Path, inner-12)+" "+FormatMB(f.SizeMB))
			}
		}
		if s := staleLine(v.Store, TagJunk); s != "" {
			junk += "\n" + s
		}
	}
	parts = append(parts, Section("Junk Files", "c to clean", junk, width))

	var large string
	if line, missing := placeholder(v.Store, TagLargeFiles); missing {
		large = line
	} else {
		files := v.files()
		large = largeFileList(files, v.selected.index(len(files)), inner, height-16)
		if s := staleLine(v.Store, TagLargeFiles); s != "" {
			large += "\n" + s
		}
	}
	parts = append(parts, Section("Large Files", fmt.Sprintf("%d", len(v.files())), large, width))

	if p := v.PromptLine(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}

// largeFileList renders files with a size bar proportional to the largest.
func largeFileList(files []api.LargeFile, selected, width, rows int) string {
	if len(files) == 0 {
		return MutedStyle.Render("no large files")
	}
	if rows < 3 {
		rows = 3
	}
	bars := TreemapBars(files, 12)
	start, end := listWindow(len(files), selected, rows)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		f := files[i]
		label := fmt.Sprintf("%s %9s  %s", bars[i], FormatMB(f.SizeMB), f.Path)
		lines = append(lines, row(label, i == selected, width))
	}
	return strings.Join(lines, "\n")
}
