package source

import (
	"fmt"
	"os"
	"strings"
)

// Location represents a span of source code with start and end positions
type Location struct {
	Start    *Position
	End      *Position
	Filename *string
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(filename *string, start, end *Position) *Location {
	return &Location{
		Filename: filename,
		Start:    start,
		End:      end,
	}
}

// At builds a single-line location, mostly used by synthesized nodes and tests
func At(filename string, line, column, width int) *Location {
	return &Location{
		Filename: &filename,
		Start:    &Position{Line: line, Column: column},
		End:      &Position{Line: line, Column: column + width},
	}
}

// Contains checks if the given position is within this location
func (l *Location) Contains(pos *Position) bool {
	if l.Start.Line > pos.Line || (l.Start.Line == pos.Line && l.Start.Column > pos.Column) {
		return false
	}
	if l.End.Line < pos.Line || (l.End.Line == pos.Line && l.End.Column < pos.Column) {
		return false
	}
	return true
}

// File returns the file name or an empty string
func (l *Location) File() string {
	if l == nil || l.Filename == nil {
		return ""
	}
	return *l.Filename
}

// Key returns a stable "L:C" string, used to name scopes after the construct that opened them
func (l *Location) Key() string {
	if l == nil || l.Start == nil {
		return "0:0"
	}
	return fmt.Sprintf("%d:%d", l.Start.Line, l.Start.Column)
}

func (l *Location) String() string {
	if l == nil || l.Start == nil || l.End == nil {
		return "location(unknown)"
	}

	return fmt.Sprintf("location(%d:%d - %d:%d)", l.Start.Line, l.Start.Column, l.End.Line, l.End.Column)
}

// SplitLines splits source text into lines without their terminators
func SplitLines(content string) []string {
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// GetSourceLines reads a file and splits it into lines.
func GetSourceLines(filepath string) ([]string, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return SplitLines(string(content)), nil
}
