package build

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/grindlemire/whitehall/internal/whgen"
)

// UnitError is the failure of a single source unit.
type UnitError struct {
	// Path is the unit's path relative to src/.
	Path string
	Err  error
}

func (e *UnitError) Error() string {
	var werr *whgen.Error
	if errors.As(e.Err, &werr) && werr.Pos.File != "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *UnitError) Unwrap() error { return e.Err }

// Render formats the failure for a terminal, with a source snippet when
// the error carries a position.
func (e *UnitError) Render() string {
	var werr *whgen.Error
	if errors.As(e.Err, &werr) {
		return e.Path + ": " + werr.Render()
	}
	return e.Error()
}

// Error collects the unit failures of one build.
type Error struct {
	Units []*UnitError
}

func (e *Error) Error() string {
	if len(e.Units) == 1 {
		return e.Units[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d unit(s) had errors", len(e.Units))
	for _, u := range e.Units {
		sb.WriteString("\n  ")
		sb.WriteString(u.Error())
	}
	return sb.String()
}
