package movement

import (
	"testing"
	"time"

	"almacen-front/internal/domain/albaran"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return &parsed
}

func TestNormalize(t *testing.T) {
	m := Movement{ID: 1, Type: "INCOMING"}
	m.Normalize()
	if m.Type != albaran.TypeIncoming {
		t.Errorf("type = %q, want incoming", m.Type)
	}
	if m.Lines == nil {
		t.Error("lines must never be nil after normalization")
	}
}

func TestDedupe(t *testing.T) {
	when := ts(t, "2026-03-01T10:00:00Z")
	list := []Movement{
		{ID: 1, Type: albaran.TypeIncoming, CreatedAt: when},
		{ID: 1, Type: albaran.TypeIncoming, CreatedAt: when},
		{ID: 1, Type: albaran.TypeOutgoing, CreatedAt: when},
		{ID: 2, Type: albaran.TypeIncoming, CreatedAt: when},
	}
	out := Dedupe(list)
	if len(out) != 3 {
		t.Fatalf("dedupe kept %d entries, want 3", len(out))
	}
	// Same id but different type must both survive.
	if out[0].ID != 1 || out[1].Type != albaran.TypeOutgoing || out[2].ID != 2 {
		t.Errorf("unexpected survivors: %+v", out)
	}
}

func TestSortNewestFirst(t *testing.T) {
	list := []Movement{
		{ID: 1, CreatedAt: ts(t, "2026-03-01T08:00:00Z")},
		{ID: 2},
		{ID: 3, CreatedAt: ts(t, "2026-03-02T08:00:00Z")},
	}
	SortNewestFirst(list)
	if list[0].ID != 3 || list[1].ID != 1 || list[2].ID != 2 {
		t.Errorf("order = [%d %d %d], want [3 1 2]", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestMatches(t *testing.T) {
	note := "caja dañada"
	origin := "ocr"
	image := "Albaran-0042.jpg"
	m := Movement{
		ID:              42,
		Origin:          &origin,
		SourceImageName: &image,
		Lines:           []albaran.Line{{SKU: "TOM-001", Note: &note}},
	}

	for _, q := range []string{"", "tom-001", "dañada", "OCR", "albaran-0042", "42"} {
		if !m.Matches(q) {
			t.Errorf("Matches(%q) = false, want true", q)
		}
	}
	if m.Matches("lechuga") {
		t.Error("Matches must reject text absent from every field")
	}
}
