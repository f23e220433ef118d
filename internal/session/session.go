package session

import (
	"time"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

// Session holds one uploaded Observation Table.
type Session struct {
	ID        string
	Table     *dataset.Table
	CreatedAt time.Time

	lastAccess time.Time
}

// Info is the client-facing description of a session.
type Info struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Rows      int                    `json:"rows"`
	Columns   []string               `json:"columns"`
	CreatedAt time.Time              `json:"created_at"`
	Options   analysis.FilterOptions `json:"options"`
}

// Info summarizes the session and the filter values its table offers.
func (s *Session) Info() Info {
	return Info{
		ID:        s.ID,
		Name:      s.Table.Name,
		Rows:      s.Table.Len(),
		Columns:   s.Table.Columns,
		CreatedAt: s.CreatedAt,
		Options:   analysis.OptionsFor(s.Table),
	}
}
