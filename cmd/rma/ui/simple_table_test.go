package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Productos", []string{"Código", "Descripción"})
	table.AddRow("1020", "Bolsa kraft")
	table.AddRow("1021", "Caja corrugada")

	view := table.View(NewStyles(LightTheme()))

	assert.Contains(t, view, "Productos")
	assert.Contains(t, view, "Bolsa kraft")
	assert.Contains(t, view, "Caja corrugada")
	assert.Contains(t, view, "Código")
	assert.Less(t, strings.Index(view, "Bolsa kraft"), strings.Index(view, "Caja corrugada"))
}

func TestSimpleTableEmpty(t *testing.T) {
	table := NewSimpleTable("", []string{"A"})
	assert.Equal(t, "", table.View(NewStyles(DarkTheme())))
}

func TestSimpleTableIgnoresExtraCells(t *testing.T) {
	table := NewSimpleTable("", []string{"A"})
	table.AddRow("uno", "sobra")
	table.Highlight = 0

	view := table.View(NewStyles(LightTheme()))
	assert.Contains(t, view, "uno")
	assert.NotContains(t, view, "sobra")
}
