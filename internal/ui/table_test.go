package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueBlock(t *testing.T) {
	result := KeyValueBlock("Connection", [][2]string{
		{"Address", "0xabc"},
		{"Chain", "RSK Testnet"},
		{"Pending", "2"},
	})
	assert.Contains(t, result, "Connection")
	assert.Contains(t, result, "RSK Testnet")
	// lipgloss RoundedBorder corners.
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")

	first, last := strings.Index(result, "Address"), strings.Index(result, "Pending")
	require.Greater(t, first, -1)
	assert.Less(t, first, last, "pairs keep their order")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Name", Width: 12},
		{Title: "Address", Width: 10},
	})

	tbl.AddRow(Row{"BTC-lending", "0x08118a219a4e34E06176cD0861fcDDB865771111"})
	tbl.AddRow(Row{"short"})
	out := tbl.Render()

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "BTC-lending")
	assert.Contains(t, out, "----------", "divider")
	assert.Contains(t, out, "0x08118a21", "cells are cut to the column width")
	assert.NotContains(t, out, "0x08118a219a")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestTableRightAlignsNumbers(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Block", Width: 8, Right: true},
		{Title: "Node", Width: 6},
	})
	tbl.AddRow(Row{"4242", "a"})
	tbl.AddMarkedRow(Row{"17", "b"})

	lines := strings.Split(tbl.Render(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[2], "    4242 a")
	assert.Contains(t, lines[3], "      17 b")
}

func TestFitMeasuresStyledText(t *testing.T) {
	styled := StyleSuccess.Render("ok")
	got := fit(styled, 5, false)
	assert.Equal(t, 5, lipgloss.Width(got))
	assert.Equal(t, "   ok", fit("ok", 5, true))
	assert.Equal(t, "abc", fit("abcdef", 3, false))
}
