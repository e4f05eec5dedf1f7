package user

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a block coordinate attached to anti-idle log entries.
type Position struct {
	X, Y, Z int
}

// String renders the position as "x,y,z", the form stored in the logs table.
func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// ParsePosition parses "x,y,z". Malformed input yields the zero position:
// log coordinates are informational and never worth failing a load over.
func ParsePosition(s string) Position {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Position{}
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	z, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return Position{}
	}
	return Position{X: x, Y: y, Z: z}
}
