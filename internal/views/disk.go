package views

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/router"
)

// TreemapBars returns one bar per file, each as wide as the file's share
// of the largest file, scaled to width cells. Every non-empty file gets at
// least one cell.
func TreemapBars(files []api.LargeFile, width int) []string {
	out := make([]string, len(files))
	if width < 1 {
		return out
	}
	largest := 0.0
	for _, f := range files {
		largest = math.Max(largest, f.SizeMB)
	}
	for i, f := range files {
		n := 0
		if largest > 0 && f.SizeMB > 0 {
			n = int(math.Round(f.SizeMB / largest * float64(width)))
			if n < 1 {
				n = 1
			}
		}
		out[i] = strings.Repeat("█", n) + strings.Repeat("░", width-n)
	}
	return out
}

// Disk shows partitions and the large files on the selected one.
type Disk struct {
	Base
	part     cursor
	selected cursor

	mount   string
	files   []api.LargeFile
	filesOK bool
	err     error
	loading bool
}

func NewDisk(d Deps) router.View {
	return &Disk{Base: Base{Deps: d}}
}

func (v *Disk) Resources() []router.Resource {
	return []router.Resource{
		{Tag: TagPartitions, Load: loader(v.Store, TagPartitions, v.Client.Partitions)},
	}
}

func (v *Disk) Mount(ctx context.Context, c router.Container) error {
	if err := v.Base.Mount(ctx, c); err != nil {
		return err
	}
	v.loadFiles()
	return nil
}

func (v *Disk) partitions() []api.Partition {
	parts, _ := Value[[]api.Partition](v.Store, TagPartitions)
	return parts
}

// Files returns the large files of the selected mount, once loaded.
func (v *Disk) Files() ([]api.LargeFile, string, bool) {
	return v.files, v.mount, v.filesOK
}

// loadFiles fetches the large files of the selected partition. The
// partition list comes from the store when present.
func (v *Disk) loadFiles() {
	want := ""
	if parts := v.partitions(); len(parts) > 0 {
		want = parts[v.part.index(len(parts))].Mountpoint
	}
	if want != "" {
		v.mount = want
	}
	v.loading = true
	client, store := v.Client, v.Store
	v.Go(func(ctx context.Context) func() {
		mount := want
		if mount == "" {
			parts := api.Fetch(ctx, client.Partitions)
			if parts.OK() {
				store.Put(TagPartitions, parts.Value)
				if len(parts.Value) > 0 {
					mount = parts.Value[0].Mountpoint
				}
			}
		}
		res := api.Fetch(ctx, func(ctx context.Context) ([]api.LargeFile, error) {
			return client.LargeFiles(ctx, mount)
		})
		return func() {
			v.loading = false
			v.mount = mount
			v.err = res.Err
			if res.OK() {
				v.files = res.Value
				v.filesOK = true
			}
		}
	})
}

func (v *Disk) Bindings() []key.Binding {
	return []key.Binding{keyLeft, keyRight, keyUp, keyDown, keyDelete}
}

func (v *Disk) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.HandleConfirm(msg) {
		return true, nil
	}
	parts := v.partitions()
	switch {
	case key.Matches(msg, keyLeft), key.Matches(msg, keyRight):
		if len(parts) < 2 {
			return true, nil
		}
		delta := 1
		if key.Matches(msg, keyLeft) {
			delta = -1
		}
		before := v.part.index(len(parts))
		v.part.move(delta, len(parts))
		if v.part.index(len(parts)) != before {
			v.files, v.filesOK, v.selected = nil, false, 0
			v.loadFiles()
		}
	case key.Matches(msg, keyUp):
		v.selected.move(-1, len(v.files))
	case key.Matches(msg, keyDown):
		v.selected.move(1, len(v.files))
	case key.Matches(msg, keyDelete):
		if len(v.files) == 0 {
			return true, nil
		}
		f := v.files[v.selected.index(len(v.files))]
		v.Confirm("Delete "+f.Path+"?", func() {
			v.deleteFile(f)
		})
	default:
		return false, nil
	}
	return true, nil
}

func (v *Disk) deleteFile(f api.LargeFile) {
	client, store := v.Client, v.Store
	v.Go(func(ctx context.Context) func() {
		res, err := client.DeleteLargeFile(ctx, f.Path)
		if err != nil {
			store.SetNotice("Delete "+f.Name+": "+api.Message(err), true)
			return nil
		}
		if msg := res.Failure(); msg != "" {
			store.SetNotice("Delete "+f.Name+": "+msg, true)
			return nil
		}
		store.SetNotice("Deleted "+f.Name, false)
		return v.loadFiles
	})
}

func (v *Disk) Render(width, height int) string {
	inner := contentWidth(width)
	var parts []string

	var partBody string
	if line, missing := placeholder(v.Store, TagPartitions); missing {
		partBody = line
	} else {
		list := v.partitions()
		sel := v.part.index(len(list))
		lines := make([]string, 0, len(list))
		for i, p := range list {
			barWidth := inner - 40
			if barWidth < 10 {
				barWidth = 10
			}
			label := fmt.Sprintf("%-12s %s %s of %s",
				truncate(p.Mountpoint, 12), percent(p.Percent), FormatGB(p.UsedGB), FormatGB(p.TotalGB))
			line := ProgressBar(barWidth, p.Percent) + " " + label
			if i == sel {
				line = TitleStyle.Render("▸ ") + line
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			lines = append(lines, MutedStyle.Render("no partitions reported"))
		}
		partBody = strings.Join(lines, "\n")
		if s := staleLine(v.Store, TagPartitions); s != "" {
			partBody += "\n" + s
		}
	}
	parts = append(parts, Section("Partitions", "←/→ select", partBody, width))

	var filesBody string
	switch {
	case v.loading && !v.filesOK:
		filesBody = MutedStyle.Render(SpinnerFrames[0] + " scanning " + v.mount + "…")
	case v.err != nil && !v.filesOK:
		filesBody = ErrorLine(v.err)
	default:
		filesBody = largeFileList(v.files, v.selected.index(len(v.files)), inner, height-len(v.partitions())-8)
		if v.err != nil {
			filesBody += "\n" + WarningStyle.Render("⚠ "+api.Message(v.err))
		}
	}
	title := "Large Files"
	if v.mount != "" {
		title += " on " + v.mount
	}
	parts = append(parts, Section(title, fmt.Sprintf("%d", len(v.files)), filesBody, width))

	if p := v.PromptLine(); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, "\n")
}
