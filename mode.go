package graphbulk

import (
	"fmt"
	"strings"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
)

// Mode tells the executor how to treat a document that already exists.
type Mode int

const (
	// ModeCreate fails for documents that already exist.
	ModeCreate Mode = iota
	// ModeUpsert replaces documents that already exist.
	ModeUpsert
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpsert:
		return "upsert"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) valid() bool {
	return m == ModeCreate || m == ModeUpsert
}

// ParseMode parses "create" or "upsert", ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return ModeCreate, nil
	case "upsert":
		return ModeUpsert, nil
	default:
		return 0, fmt.Errorf("%w: %q", constants.ErrUnknownMode, s)
	}
}
