package review

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"almacen-front/internal/backend"
	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/domain/product"
	"almacen-front/internal/logger"
	appErrors "almacen-front/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testCatalog = product.Catalog{
	{SKU: "TOM-001", Name: "Tomate", Unit: product.UnitKg},
	{SKU: "TOM-002", Name: "Tomate pera", Unit: product.UnitKg},
	{SKU: "LEC-001", Name: "Lechuga", Unit: product.UnitUnidad},
}

func staticCatalog(context.Context) (product.Catalog, error) {
	return testCatalog, nil
}

type staticTokens struct{}

func (staticTokens) Token() string { return "tok" }
func (staticTokens) Logout()       {}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want AppError", err)
	}
	return appErr.Code
}

func TestResolveLineExplicitSKUWins(t *testing.T) {
	res := resolveLine(0, Line{SKU: "LEC-001", Name: "Tomate"}, testCatalog)
	if !res.Resolved || res.SKU != "LEC-001" {
		t.Errorf("resolution = %+v, want explicit SKU to win over the name", res)
	}
}

func TestResolveLineByName(t *testing.T) {
	// Free text containing the catalog name also matches.
	res := resolveLine(0, Line{Name: "lechuga fresca"}, testCatalog)
	if !res.Resolved || res.SKU != "LEC-001" {
		t.Errorf("resolution = %+v, want LEC-001", res)
	}
}

func TestResolveLineAmbiguous(t *testing.T) {
	res := resolveLine(0, Line{Name: "tomate"}, testCatalog)
	if !res.Resolved || res.SKU != "TOM-001" {
		t.Errorf("resolution = %+v, want the first hit", res)
	}
	if len(res.Ambiguous) != 1 || res.Ambiguous[0] != "TOM-002" {
		t.Errorf("ambiguous = %v, want [TOM-002]", res.Ambiguous)
	}
}

func TestResolveLineUnmatched(t *testing.T) {
	res := resolveLine(0, Line{Name: "alcachofa"}, testCatalog)
	if res.Resolved {
		t.Errorf("resolution = %+v, want unresolved", res)
	}
}

func newReviewService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := backend.NewClient(srv.URL, time.Second, staticTokens{}, nil)
	return NewService(api, staticCatalog)
}

func noBackend(t *testing.T) (*Service, *int) {
	t.Helper()
	var calls int
	s := newReviewService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	return s, &calls
}

func TestStartSeedsDefaults(t *testing.T) {
	s, _ := noBackend(t)
	r := s.Start([]albaran.OcrItem{
		{Name: "Tomate", Qty: 3, Unit: "kg"},
		{Name: "Lechuga"},
		{Name: "Caja", Qty: math.NaN()},
		{Name: "Pera", Qty: -2},
	}, "foto.jpg", nil)

	if r.Type != albaran.TypeIncoming {
		t.Errorf("type = %q, want incoming by default", r.Type)
	}
	if r.SourceImageName != "foto.jpg" {
		t.Errorf("source = %q", r.SourceImageName)
	}
	want := []Line{
		{Name: "Tomate", Qty: 3, Unit: "kg"},
		{Name: "Lechuga", Qty: 1, Unit: "unidad"},
		{Name: "Caja", Qty: 1, Unit: "unidad"},
		{Name: "Pera", Qty: 1, Unit: "unidad"},
	}
	if len(r.Lines) != len(want) {
		t.Fatalf("lines = %d, want %d", len(r.Lines), len(want))
	}
	for i, w := range want {
		if r.Lines[i] != w {
			t.Errorf("line %d = %+v, want %+v", i, r.Lines[i], w)
		}
	}
}

func TestLineEditing(t *testing.T) {
	s, _ := noBackend(t)
	s.Start([]albaran.OcrItem{{Name: "Tomate", Qty: 3, Unit: "kg"}}, "foto.jpg", nil)

	sku := "TOM-001"
	qty := 4.5
	if err := s.UpdateLine(0, LinePatch{SKU: &sku, Qty: &qty}); err != nil {
		t.Fatalf("UpdateLine: %v", err)
	}
	if err := s.AppendLine(); err != nil {
		t.Fatalf("AppendLine: %v", err)
	}

	r, ok := s.Current()
	if !ok {
		t.Fatal("Current: no review")
	}
	if r.Lines[0].SKU != "TOM-001" || r.Lines[0].Qty != 4.5 || r.Lines[0].Name != "Tomate" {
		t.Errorf("line 0 = %+v", r.Lines[0])
	}
	if r.Lines[1].Qty != 1 || r.Lines[1].Unit != "unidad" {
		t.Errorf("appended line = %+v", r.Lines[1])
	}

	if err := s.RemoveLine(1); err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if err := s.RemoveLine(5); appCode(t, err) != "INVALID_INPUT" {
		t.Errorf("out-of-range remove = %v", err)
	}

	r, _ = s.Current()
	if len(r.Lines) != 1 {
		t.Errorf("lines = %d, want 1", len(r.Lines))
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s, _ := noBackend(t)
	s.Start([]albaran.OcrItem{{Name: "Tomate", Qty: 3, Unit: "kg"}}, "foto.jpg", nil)

	r, _ := s.Current()
	r.Lines[0].Qty = 999

	again, _ := s.Current()
	if again.Lines[0].Qty != 3 {
		t.Error("mutating a returned review must not touch the stored one")
	}
}

func TestCommitBlocksUnresolvedLineBeforeNetwork(t *testing.T) {
	s, calls := noBackend(t)
	s.Start([]albaran.OcrItem{
		{Name: "Tomate", Qty: 2, Unit: "kg"},
		{Name: "alcachofa", Qty: 1, Unit: "kg"},
	}, "foto.jpg", nil)

	_, err := s.Commit(context.Background(), &CommitRequest{Type: albaran.TypeIncoming})
	if appCode(t, err) != "UNRESOLVED_LINE" {
		t.Fatalf("err = %v, want UNRESOLVED_LINE", err)
	}
	if *calls != 0 {
		t.Errorf("an unresolved line must abort before the backend, saw %d calls", *calls)
	}

	// The review survives the failed commit.
	if _, ok := s.Current(); !ok {
		t.Error("a failed commit must keep the review open")
	}
}

func TestCommitBlocksFractionalUnidad(t *testing.T) {
	s, calls := noBackend(t)
	s.Start([]albaran.OcrItem{{Name: "Lechuga", Qty: 2.5, Unit: "unidad"}}, "foto.jpg", nil)

	_, err := s.Commit(context.Background(), &CommitRequest{Type: albaran.TypeIncoming})
	if appCode(t, err) != "INVALID_QTY" {
		t.Fatalf("err = %v, want INVALID_QTY", err)
	}
	if *calls != 0 {
		t.Errorf("invalid quantity must abort before the backend, saw %d calls", *calls)
	}
}

func TestCommitRejectsEmptyReview(t *testing.T) {
	s, calls := noBackend(t)
	s.Start(nil, "foto.jpg", nil)

	_, err := s.Commit(context.Background(), &CommitRequest{Type: albaran.TypeIncoming})
	if appCode(t, err) != "NO_LINES" {
		t.Fatalf("err = %v, want NO_LINES", err)
	}
	if *calls != 0 {
		t.Errorf("saw %d backend calls, want 0", *calls)
	}
}

func TestCommitCreatesAlbaran(t *testing.T) {
	var payload backend.CommitPayload
	s := newReviewService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albaranes/commit" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(albaran.Albaran{ID: 77, Type: albaran.TypeIncoming})
	}))

	s.Start([]albaran.OcrItem{
		{Name: "tomate", Qty: 2, Unit: "kg", Note: "maduro"},
		{Name: "", Qty: 1}, // dropped: neither SKU nor name
	}, "Foto-1.jpg", nil)

	outcome, err := s.Commit(context.Background(), &CommitRequest{Type: albaran.TypeIncoming})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if outcome.Albaran == nil || outcome.Albaran.ID != 77 {
		t.Errorf("outcome = %+v", outcome)
	}
	if outcome.Assigned {
		t.Error("creating a fresh albaran must not report assigned")
	}
	if len(outcome.Warnings) != 1 {
		t.Errorf("warnings = %v, want one ambiguity warning for 'tomate'", outcome.Warnings)
	}

	if payload.Origin != "ocr" || payload.SourceImageName != "Foto-1.jpg" {
		t.Errorf("payload = %+v", payload)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("items = %d, want the empty line dropped", len(payload.Items))
	}
	item := payload.Items[0]
	if item.SKU != "TOM-001" || item.Qty != 2 || item.Unit != "kg" {
		t.Errorf("item = %+v", item)
	}
	if item.Note == nil || *item.Note != "maduro" {
		t.Errorf("note = %v, want maduro", item.Note)
	}

	if _, ok := s.Current(); ok {
		t.Error("a committed review must be cleared")
	}
}

func TestCommitAssignsExistingAlbaran(t *testing.T) {
	var gotPath, gotMethod string
	s := newReviewService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))

	id := int64(31)
	s.Start([]albaran.OcrItem{{SKU: "TOM-001", Name: "Tomate", Qty: 2, Unit: "kg"}}, "foto.jpg", &id)

	outcome, err := s.Commit(context.Background(), &CommitRequest{Type: albaran.TypeIncoming})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !outcome.Assigned {
		t.Error("assigning to an existing albaran must report assigned")
	}
	if gotPath != "/albaranes/31/complete" || gotMethod != http.MethodPatch {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestCommitRejectsInvalidType(t *testing.T) {
	s, calls := noBackend(t)
	s.Start([]albaran.OcrItem{{SKU: "TOM-001", Name: "Tomate", Qty: 2, Unit: "kg"}}, "foto.jpg", nil)

	_, err := s.Commit(context.Background(), &CommitRequest{Type: "sideways"})
	if appCode(t, err) != "INVALID_INPUT" {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
	if *calls != 0 {
		t.Errorf("saw %d backend calls, want 0", *calls)
	}
}

func TestSetTypeRequiresReview(t *testing.T) {
	s, _ := noBackend(t)
	if err := s.SetType(albaran.TypeOutgoing); appCode(t, err) != "NO_REVIEW" {
		t.Errorf("err = %v, want NO_REVIEW", err)
	}

	s.Start(nil, "foto.jpg", nil)
	if err := s.SetType("sideways"); appCode(t, err) != "INVALID_INPUT" {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if err := s.SetType(albaran.TypeOutgoing); err != nil {
		t.Errorf("SetType: %v", err)
	}
	r, _ := s.Current()
	if r.Type != albaran.TypeOutgoing {
		t.Errorf("type = %q, want outgoing", r.Type)
	}
}
