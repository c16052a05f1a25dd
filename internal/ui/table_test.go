package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTableStyle(t *testing.T) {
	style := DefaultTableStyle()

	// Verify the styles have been initialized (they are non-nil structs)
	// We can't easily test lipgloss.Style contents, so just verify we can render with them
	testStr := "test"
	assert.NotPanics(t, func() {
		_ = style.Header.Render(testStr)
		_ = style.Cell.Render(testStr)
		_ = style.Selected.Render(testStr)
		_ = style.Border.Render(testStr)
	})
}

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 20},
		{Title: "Status", Width: 10},
	}
	rows := []table.Row{
		{"health", "ok"},
		{"security", "error"},
	}

	tbl := NewTable(columns, rows)

	// Table should be created without panicking
	view := tbl.View()
	assert.NotEmpty(t, view)
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "Status")
	assert.Contains(t, view, "health")
	assert.Contains(t, view, "security")
}

func TestNewTable_EmptyRows(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 20},
	}
	rows := []table.Row{}

	tbl := NewTable(columns, rows)
	view := tbl.View()

	assert.NotEmpty(t, view)
	assert.Contains(t, view, "Name")
}

func TestRenderSimpleTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Metric", Width: 15},
		{Title: "Status", Width: 10},
	}
	rows := [][]string{
		{"CPU", "42.5%"},
		{"Disk", "91.0%"},
	}

	output := RenderSimpleTable(columns, rows)

	assert.Contains(t, output, "Metric")
	assert.Contains(t, output, "Status")
	assert.Contains(t, output, "CPU")
	assert.Contains(t, output, "Disk")
	assert.Contains(t, output, "42.5%")
	assert.Contains(t, output, "91.0%")
}

func TestRenderSimpleTable_EmptyRows(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 20},
	}
	rows := [][]string{}

	output := RenderSimpleTable(columns, rows)
	assert.Empty(t, output)
}

func TestTableColumn(t *testing.T) {
	col := TableColumn{Title: "Test", Width: 25}
	assert.Equal(t, "Test", col.Title)
	assert.Equal(t, 25, col.Width)
}
