package rules

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/ews-cli/internal/table"
)

// MissingColumnError reports the first required column absent from a dataset.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column: %s", e.Column)
}

// ErrUnknownRule is returned by Engine.Apply for an unregistered rule id.
var ErrUnknownRule = errors.New("unknown rule")

// requireColumns resolves each required column in order and fails on the
// first one that is missing.
func requireColumns(t table.Table, required []string) ([]int, error) {
	idx := make([]int, len(required))
	for i, col := range required {
		j := t.Index(col)
		if j < 0 {
			return nil, &MissingColumnError{Column: col}
		}
		idx[i] = j
	}
	return idx, nil
}
