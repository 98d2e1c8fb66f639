package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayoutDimensions(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 80, l.ContentWidth())
	assert.Equal(t, 22, l.ContentHeight())

	assert.Equal(t, 0, NewLayout(10, 1).ContentHeight())
}

func TestLayoutBarsSpanWidth(t *testing.T) {
	l := NewLayout(60, 10)

	header := l.RenderHeader("To-Do", "All Lists")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "To-Do")
	assert.Contains(t, header, "All Lists")

	bar := l.RenderStatusBar("n new", "")
	assert.Equal(t, 60, lipgloss.Width(bar))

	frame := l.RenderWithFrame(header, "body", bar)
	assert.Equal(t, 10, len(strings.Split(frame, "\n")))
}
