package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn matches any MissingColumnError via errors.Is.
var ErrMissingColumn = errors.New("missing required column")

// MissingColumnError reports every required column absent from the input header.
type MissingColumnError struct {
	Missing   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	msg := fmt.Sprintf("missing required column(s): %s", strings.Join(quoted, ", "))
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (found: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }
