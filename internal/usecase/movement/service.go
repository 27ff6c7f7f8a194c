package movement

import (
	"context"
	"fmt"
	"math"
	"sync"

	"almacen-front/internal/backend"
	"almacen-front/internal/domain/albaran"
	domainMovement "almacen-front/internal/domain/movement"
	"almacen-front/internal/domain/product"
	"almacen-front/internal/scale"
	appErrors "almacen-front/pkg/errors"
)

// Service drives the entrada/salida screens: catalog-backed scan
// resolution, scale-mode quantities, and single-line submissions. Each
// movement type is gated by its own busy flag so two taps cannot race a
// submission of the same screen.
type Service struct {
	api  *backend.Client
	feed *scale.Feed

	mu      sync.Mutex
	busy    map[albaran.Type]bool
	catalog product.Catalog
}

func NewService(api *backend.Client, feed *scale.Feed) *Service {
	return &Service{
		api:  api,
		feed: feed,
		busy: make(map[albaran.Type]bool),
	}
}

// Catalog returns the cached catalog, fetching it on first use.
func (s *Service) Catalog(ctx context.Context) (product.Catalog, error) {
	s.mu.Lock()
	cached := s.catalog
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	return s.RefreshCatalog(ctx)
}

// RefreshCatalog refetches the catalog from the backend.
func (s *Service) RefreshCatalog(ctx context.Context) (product.Catalog, error) {
	catalog, err := s.api.Products(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return catalog, nil
}

// ResolveScan maps a decoded barcode to its catalog entry; the screen then
// selects the product and its canonical unit.
func (s *Service) ResolveScan(ctx context.Context, code string) (product.Product, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return product.Product{}, err
	}

	p, ok := catalog.FindBySKU(code)
	if !ok {
		return product.Product{}, appErrors.NewAppError("UNKNOWN_SKU",
			fmt.Sprintf("code %s does not match any SKU", code), appErrors.ErrUnknownSKU)
	}
	return p, nil
}

// ScaleQty reads the feed for a scale-mode quantity: the current weight
// rounded to three decimals. Meaningless for discrete units.
func (s *Service) ScaleQty(unit product.Unit) (float64, string, error) {
	if product.IntegerOnly(unit) {
		return 0, "", appErrors.NewAppError("WRONG_UNIT",
			"scale mode does not apply to unit 'unidad'", appErrors.ErrWrongUnit)
	}

	reading := s.feed.Reading()
	if !reading.Connected {
		return 0, "", appErrors.NewAppError("SCALE_OFFLINE",
			appErrors.ErrScaleUnavailable.Error(), appErrors.ErrScaleUnavailable)
	}
	return math.Round(reading.Weight*1000) / 1000, reading.Unit, nil
}

// SubmitEntrada validates and registers one incoming line, returning the
// assigned lot.
func (s *Service) SubmitEntrada(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	release, err := s.acquire(albaran.TypeIncoming)
	if err != nil {
		return nil, err
	}
	defer release()

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateSubmit(req, catalog); err != nil {
		return nil, err
	}

	result, err := s.api.CreateIncoming(ctx, backend.IncomingInput{
		SKU:  req.SKU,
		Qty:  req.Qty,
		Unit: req.Unit,
		Note: req.Note,
	})
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Lot: result.Lot}, nil
}

// SubmitSalida validates and registers one outgoing line; without explicit
// allocations the backend picks lots FIFO.
func (s *Service) SubmitSalida(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	release, err := s.acquire(albaran.TypeOutgoing)
	if err != nil {
		return nil, err
	}
	defer release()

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateSubmit(req, catalog); err != nil {
		return nil, err
	}

	if err := s.api.CreateOutgoing(ctx, backend.OutgoingInput{
		SKU:      req.SKU,
		Qty:      req.Qty,
		Unit:     req.Unit,
		OrderRef: req.OrderRef,
	}); err != nil {
		return nil, err
	}
	return &SubmitResult{}, nil
}

// History fetches the unified movement list and applies the client-side
// hygiene the backend does not: lowercase types, dedupe, newest first.
func (s *Service) History(ctx context.Context) ([]domainMovement.Movement, error) {
	list, err := s.api.Movements(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Normalize()
	}
	list = domainMovement.Dedupe(list)
	domainMovement.SortNewestFirst(list)
	return list, nil
}

// acquire takes the per-type busy flag, or reports an overlapping
// submission. Overlaps are rejected, not queued; request order across two
// submissions is otherwise not guaranteed.
func (s *Service) acquire(typ albaran.Type) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[typ] {
		return nil, appErrors.NewAppError("BUSY", appErrors.ErrBusy.Error(), appErrors.ErrBusy)
	}
	s.busy[typ] = true
	return func() {
		s.mu.Lock()
		s.busy[typ] = false
		s.mu.Unlock()
	}, nil
}
