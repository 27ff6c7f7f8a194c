package movement

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"almacen-front/internal/domain/albaran"
)

// Movement is one entry of the unified history: a committed stock movement
// of either type with its lines.
type Movement struct {
	ID              int64          `json:"id"`
	Type            albaran.Type   `json:"type"`
	Origin          *string        `json:"origin,omitempty"`
	SourceImageName *string        `json:"source_image_name,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	Lines           []albaran.Line `json:"lines"`
}

// Lot identifies the traceability unit the backend assigned to an incoming
// movement.
type Lot struct {
	ID      int64  `json:"lot_id"`
	LotCode string `json:"lot_code"`
}

// Normalize lowercases the type and guarantees a non-nil line slice.
func (m *Movement) Normalize() {
	m.Type = albaran.Type(strings.ToLower(string(m.Type)))
	if m.Lines == nil {
		m.Lines = []albaran.Line{}
	}
}

// Dedupe drops duplicate entries keyed by id+type+created_at. The backend
// occasionally repeats rows when the history is assembled from both ledgers.
func Dedupe(list []Movement) []Movement {
	seen := make(map[string]struct{}, len(list))
	out := make([]Movement, 0, len(list))
	for _, m := range list {
		created := ""
		if m.CreatedAt != nil {
			created = m.CreatedAt.Format(time.RFC3339Nano)
		}
		key := fmt.Sprintf("%d-%s-%s", m.ID, m.Type, created)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// SortNewestFirst orders movements by creation time descending; entries
// without a timestamp sink to the end.
func SortNewestFirst(list []Movement) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if list[i].CreatedAt != nil {
			ti = *list[i].CreatedAt
		}
		if list[j].CreatedAt != nil {
			tj = *list[j].CreatedAt
		}
		return ti.After(tj)
	})
}

// Matches reports whether the movement matches a free-text query over its
// lines' SKUs and notes, its origin, source image name or id.
func (m *Movement) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, l := range m.Lines {
		if strings.Contains(strings.ToLower(l.SKU), q) {
			return true
		}
		if l.Note != nil && strings.Contains(strings.ToLower(*l.Note), q) {
			return true
		}
	}
	if m.Origin != nil && strings.Contains(strings.ToLower(*m.Origin), q) {
		return true
	}
	if m.SourceImageName != nil && strings.Contains(strings.ToLower(*m.SourceImageName), q) {
		return true
	}
	return strings.Contains(fmt.Sprintf("%d", m.ID), q)
}
