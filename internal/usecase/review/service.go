package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"almacen-front/internal/backend"
	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/domain/product"
	"almacen-front/internal/logger"
	movementUC "almacen-front/internal/usecase/movement"
	appErrors "almacen-front/pkg/errors"
)

// DefaultUnit fills lines the OCR step left without a unit.
const DefaultUnit = "unidad"

// CatalogFn supplies the product catalog at commit time. The movement
// service's cached catalog backs it, so the validation gate does not cost
// a network round trip.
type CatalogFn func(ctx context.Context) (product.Catalog, error)

// Service owns the review workflow for the kiosk's single operator: one
// active review at a time, seeded from OCR candidates, edited line by
// line, then committed as one atomic batch.
type Service struct {
	api     *backend.Client
	catalog CatalogFn

	mu      sync.Mutex
	current *Review
	busy    bool
}

func NewService(api *backend.Client, catalog CatalogFn) *Service {
	return &Service{api: api, catalog: catalog}
}

// Start seeds a new review from OCR candidates, replacing any previous
// one. Missing or invalid quantities default to 1; missing units default
// to "unidad".
func (s *Service) Start(items []albaran.OcrItem, sourceImageName string, albaranID *int64) *Review {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, seedLine(item))
	}

	r := &Review{
		ID:              uuid.NewString(),
		Type:            albaran.TypeIncoming,
		SourceImageName: sourceImageName,
		AlbaranID:       albaranID,
		Lines:           lines,
	}

	s.mu.Lock()
	s.current = r
	s.mu.Unlock()

	logger.Info("Review started",
		zap.String("review_id", r.ID),
		zap.String("source", sourceImageName),
		zap.Int("candidates", len(lines)),
	)
	return snapshot(r)
}

func seedLine(item albaran.OcrItem) Line {
	qty := item.Qty
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		qty = 1
	}
	unit := item.Unit
	if unit == "" {
		unit = DefaultUnit
	}
	return Line{
		SKU:  item.SKU,
		Name: item.Name,
		Qty:  qty,
		Unit: unit,
		Note: item.Note,
	}
}

// snapshot copies the review so callers cannot mutate held state.
func snapshot(r *Review) *Review {
	cp := *r
	cp.Lines = append([]Line(nil), r.Lines...)
	return &cp
}

// Current returns the active review, if any.
func (s *Service) Current() (*Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return snapshot(s.current), true
}

// SetType picks the movement type the batch will commit as.
func (s *Service) SetType(typ albaran.Type) error {
	if !albaran.IsValidType(typ) {
		return appErrors.NewAppError("INVALID_INPUT", fmt.Sprintf("unknown movement type %q", typ), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return appErrors.NewAppError("NO_REVIEW", "no review in progress", nil)
	}
	s.current.Type = typ
	return nil
}

// UpdateLine patches one line's fields.
func (s *Service) UpdateLine(idx int, patch LinePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLine(idx); err != nil {
		return err
	}

	line := &s.current.Lines[idx]
	if patch.SKU != nil {
		line.SKU = *patch.SKU
	}
	if patch.Name != nil {
		line.Name = *patch.Name
	}
	if patch.Qty != nil {
		line.Qty = *patch.Qty
	}
	if patch.Unit != nil {
		line.Unit = *patch.Unit
	}
	if patch.Note != nil {
		line.Note = *patch.Note
	}
	return nil
}

// RemoveLine deletes one line.
func (s *Service) RemoveLine(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLine(idx); err != nil {
		return err
	}
	s.current.Lines = append(s.current.Lines[:idx], s.current.Lines[idx+1:]...)
	return nil
}

// AppendLine adds a blank line for products the OCR missed entirely.
func (s *Service) AppendLine() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return appErrors.NewAppError("NO_REVIEW", "no review in progress", nil)
	}
	s.current.Lines = append(s.current.Lines, Line{Qty: 1, Unit: DefaultUnit})
	return nil
}

func (s *Service) checkLine(idx int) error {
	if s.current == nil {
		return appErrors.NewAppError("NO_REVIEW", "no review in progress", nil)
	}
	if idx < 0 || idx >= len(s.current.Lines) {
		return appErrors.NewAppError("INVALID_INPUT", fmt.Sprintf("line %d does not exist", idx), nil)
	}
	return nil
}

// Commit resolves and validates every retained line and submits the batch
// as a single atomic request. Any unresolved line aborts before any
// network call. req.Lines, when non-nil, is the operator's final word and
// replaces the stored lines.
func (s *Service) Commit(ctx context.Context, req *CommitRequest) (*CommitOutcome, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, appErrors.NewAppError("BUSY", appErrors.ErrBusy.Error(), appErrors.ErrBusy)
	}
	s.busy = true
	current := s.current
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	lines := req.Lines
	sourceImageName := req.SourceImageName
	var albaranID *int64
	if current != nil {
		if lines == nil {
			lines = current.Lines
		}
		if sourceImageName == "" {
			sourceImageName = current.SourceImageName
		}
		albaranID = current.AlbaranID
	}
	if !albaran.IsValidType(req.Type) {
		return nil, appErrors.NewAppError("INVALID_INPUT", fmt.Sprintf("unknown movement type %q", req.Type), nil)
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	items, warnings, err := buildItems(lines, catalog)
	if err != nil {
		return nil, err
	}

	outcome := &CommitOutcome{Warnings: warnings}
	if albaranID != nil {
		if err := s.api.AssignOCR(ctx, *albaranID, backend.AssignPayload{
			Type:  req.Type,
			Items: items,
		}); err != nil {
			return nil, err
		}
		outcome.Assigned = true
	} else {
		created, err := s.api.CommitOCR(ctx, backend.CommitPayload{
			Type:            req.Type,
			Origin:          "ocr",
			SourceImageName: sourceImageName,
			Items:           items,
		})
		if err != nil {
			return nil, err
		}
		outcome.Albaran = created
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	logger.Info("Review committed",
		zap.String("type", string(req.Type)),
		zap.Int("lines", len(items)),
		zap.Bool("assigned", outcome.Assigned),
	)
	return outcome, nil
}

// buildItems is the validation gate: lines carrying neither SKU nor name
// are dropped; every retained line must resolve to a SKU and carry a
// quantity valid for its unit. Any failure aborts before the backend sees
// anything.
func buildItems(lines []Line, catalog product.Catalog) ([]backend.CommitLine, []string, error) {
	retained := make([]Line, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.SKU) == "" && strings.TrimSpace(l.Name) == "" {
			continue
		}
		retained = append(retained, l)
	}
	if len(retained) == 0 {
		return nil, nil, appErrors.NewAppError("NO_LINES", appErrors.ErrNoLines.Error(), appErrors.ErrNoLines)
	}

	items := make([]backend.CommitLine, 0, len(retained))
	var warnings []string
	for i, l := range retained {
		res := resolveLine(i, l, catalog)
		if !res.Resolved {
			return nil, nil, appErrors.NewAppError("UNRESOLVED_LINE",
				fmt.Sprintf("line %d (%q) could not be resolved to a SKU", i+1, l.Name),
				appErrors.ErrUnresolvedLine)
		}
		if len(res.Ambiguous) > 0 {
			warnings = append(warnings, fmt.Sprintf("line %d matched several products: %s and %s",
				i+1, res.SKU, strings.Join(res.Ambiguous, ", ")))
		}

		unit := l.Unit
		if unit == "" {
			unit = DefaultUnit
		}
		if err := movementUC.ValidateQty(product.Unit(unit), l.Qty); err != nil {
			return nil, nil, err
		}

		var note *string
		if l.Note != "" {
			n := l.Note
			note = &n
		}
		items = append(items, backend.CommitLine{SKU: res.SKU, Qty: l.Qty, Unit: unit, Note: note})
	}
	return items, warnings, nil
}
