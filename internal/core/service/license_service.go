package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
	"github.com/unitynodes/unity-nodes-api/internal/pkg/metrics"
)

const (
	defaultAllocationAttempts = 3
	maxProvisionBatch         = 1000
	provisionKeyAttempts      = 3
)

// LicenseService implements allocation, listing, provisioning and activation.
type LicenseService struct {
	repo        ports.LicenseRepository
	events      ports.EventSink
	logger      zerolog.Logger
	maxAttempts int
	now         func() time.Time
}

// LicenseServiceOption customises a LicenseService.
type LicenseServiceOption func(*LicenseService)

// WithMaxAttempts bounds how many select-and-claim rounds Allocate runs
// before reporting contention.
func WithMaxAttempts(n int) LicenseServiceOption {
	return func(s *LicenseService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LicenseServiceOption {
	return func(s *LicenseService) { s.now = now }
}

func NewLicenseService(repo ports.LicenseRepository, events ports.EventSink, logger zerolog.Logger, opts ...LicenseServiceOption) *LicenseService {
	if events == nil {
		events = discardEvents{}
	}
	s := &LicenseService{
		repo:        repo,
		events:      events,
		logger:      logger,
		maxAttempts: defaultAllocationAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate claims the oldest available license matching the optional
// category for the requester.
//
// The claim is a conditional write on the store, so two requests racing for
// the same record cannot both win; the loser selects again, up to
// maxAttempts rounds, then gets domain.ErrContention.
func (s *LicenseService) Allocate(ctx context.Context, in ports.AllocateInput) (lic *domain.License, err error) {
	start := time.Now()
	nodeType := domain.NodeType(strings.TrimSpace(in.NodeType))
	defer func() {
		result := allocationResult(err)
		metrics.LicenseAllocationsTotal.WithLabelValues(nodeType.Label(), result).Inc()
		metrics.LicenseAllocationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	requester, err := domain.NewRequesterID(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("allocate license: %w: userId is required", err)
	}
	if nodeType != "" && !nodeType.Valid() {
		return nil, fmt.Errorf("allocate license: %w: unknown node type %q", domain.ErrInvalidRequest, nodeType)
	}

	// 1. One generated license per requester.
	if err := s.ensureNoActiveClaim(ctx, requester); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		// 2. FIFO selection.
		candidate, err := s.repo.FindOldest(ctx, ports.LicenseFilter{
			Status:   domain.StatusAvailable,
			NodeType: nodeType,
		})
		if errors.Is(err, domain.ErrLicenseNotFound) {
			return nil, &domain.NoInventoryError{NodeType: nodeType}
		}
		if err != nil {
			return nil, domain.StorageError("allocate license: select candidate", err)
		}

		// 3. Conditional claim.
		claimed, err := s.repo.UpdateStatus(ctx, ports.StatusUpdate{
			ID:       candidate.ID,
			Expected: domain.StatusAvailable,
			Next:     domain.StatusGenerated,
			UserID:   requester.String(),
			At:       s.now(),
		})
		switch {
		case err == nil:
			s.logger.Info().
				Str("license_id", claimed.ID).
				Str("user_id", requester.String()).
				Str("node_type", string(claimed.NodeType)).
				Int("attempt", attempt).
				Msg("license generated")
			s.events.Enqueue(domain.Event{
				Type:       domain.EventLicenseGenerated,
				Key:        requester.String(),
				OccurredAt: s.now(),
				Payload:    claimed,
			})
			return claimed, nil

		case errors.Is(err, domain.ErrStaleLicense), errors.Is(err, domain.ErrLicenseNotFound):
			metrics.LicenseClaimConflictsTotal.WithLabelValues(nodeType.Label()).Inc()
			s.logger.Debug().
				Str("license_id", candidate.ID).
				Str("user_id", requester.String()).
				Int("attempt", attempt).
				Msg("claim lost to a concurrent request")
			continue

		case errors.Is(err, domain.ErrDuplicateClaim):
			// The same requester won a parallel claim on another record.
			if err := s.ensureNoActiveClaim(ctx, requester); err != nil {
				return nil, err
			}
			// The parallel claim is gone again (released or rolled back).
			return nil, fmt.Errorf("allocate license: %w", domain.ErrContention)

		default:
			return nil, domain.StorageError("allocate license: claim", err)
		}
	}

	s.logger.Warn().
		Str("user_id", requester.String()).
		Str("node_type", nodeType.Label()).
		Int("attempts", s.maxAttempts).
		Msg("license allocation gave up after repeated contention")
	return nil, fmt.Errorf("allocate license: %w", domain.ErrContention)
}

func (s *LicenseService) ensureNoActiveClaim(ctx context.Context, requester domain.RequesterID) error {
	existing, err := s.repo.FindFirstByUserAndStatus(ctx, requester.String(), domain.StatusGenerated)
	switch {
	case err == nil:
		return &domain.AlreadyAllocatedError{Existing: existing}
	case errors.Is(err, domain.ErrLicenseNotFound):
		return nil
	default:
		return domain.StorageError("allocate license: pre-check", err)
	}
}

// List returns licenses matching the optional filters, newest first.
func (s *LicenseService) List(ctx context.Context, in ports.ListLicensesInput) ([]*domain.License, error) {
	filter := ports.LicenseFilter{
		Status:   domain.LicenseStatus(strings.TrimSpace(in.Status)),
		NodeType: domain.NodeType(strings.TrimSpace(in.NodeType)),
		UserID:   strings.TrimSpace(in.UserID),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("list licenses: %w: unknown status %q", domain.ErrInvalidRequest, filter.Status)
	}

	licenses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.StorageError("list licenses", err)
	}
	return licenses, nil
}

// Provision adds Count available licenses of the given category with fresh keys.
func (s *LicenseService) Provision(ctx context.Context, in ports.ProvisionInput) ([]*domain.License, error) {
	nodeType := domain.NodeType(strings.TrimSpace(in.NodeType))
	if !nodeType.Valid() {
		return nil, fmt.Errorf("provision licenses: %w: unknown node type %q", domain.ErrInvalidRequest, in.NodeType)
	}
	if in.Count < 1 || in.Count > maxProvisionBatch {
		return nil, fmt.Errorf("provision licenses: %w: count must be between 1 and %d", domain.ErrInvalidRequest, maxProvisionBatch)
	}

	var lastErr error
	for attempt := 0; attempt < provisionKeyAttempts; attempt++ {
		batch := s.newBatch(nodeType, in.Count)
		lastErr = s.repo.CreateBatch(ctx, batch)
		if lastErr == nil {
			metrics.LicensesProvisionedTotal.WithLabelValues(string(nodeType)).Add(float64(len(batch)))
			s.logger.Info().Str("node_type", string(nodeType)).Int("count", len(batch)).Msg("licenses provisioned")
			for _, lic := range batch {
				s.events.Enqueue(domain.Event{
					Type:       domain.EventLicenseProvisioned,
					Key:        lic.ID,
					OccurredAt: lic.CreatedAt,
					Payload:    lic,
				})
			}
			return batch, nil
		}
		// A key collision rolls the whole batch back; regenerate and retry.
		if !errors.Is(lastErr, domain.ErrDuplicateLicenseKey) {
			break
		}
	}
	return nil, domain.StorageError("provision licenses", lastErr)
}

func (s *LicenseService) newBatch(nodeType domain.NodeType, count int) []*domain.License {
	batch := make([]*domain.License, count)
	base := s.now()
	for i := range batch {
		batch[i] = &domain.License{
			ID:          uuid.NewString(),
			LicenseKey:  generateLicenseKey(nodeType),
			Status:      domain.StatusAvailable,
			NodeType:    nodeType,
			StakeAmount: nodeType.Stake(),
			// Distinct timestamps keep FIFO order equal to insertion order.
			CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return batch
}

// Activate moves a generated license to used.
func (s *LicenseService) Activate(ctx context.Context, licenseID string) (*domain.License, error) {
	id := strings.TrimSpace(licenseID)
	if id == "" {
		return nil, fmt.Errorf("activate license: %w: id is required", domain.ErrInvalidRequest)
	}

	current, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrLicenseNotFound) {
		return nil, fmt.Errorf("activate license: %w", err)
	}
	if err != nil {
		return nil, domain.StorageError("activate license", err)
	}
	if !current.Status.CanTransitionTo(domain.StatusUsed) {
		return nil, fmt.Errorf("activate license: %w (from %s to %s)", domain.ErrInvalidTransition, current.Status, domain.StatusUsed)
	}

	used, err := s.repo.UpdateStatus(ctx, ports.StatusUpdate{
		ID:       id,
		Expected: domain.StatusGenerated,
		Next:     domain.StatusUsed,
		At:       s.now(),
	})
	switch {
	case errors.Is(err, domain.ErrStaleLicense):
		return nil, fmt.Errorf("activate license: %w (license changed concurrently)", domain.ErrInvalidTransition)
	case errors.Is(err, domain.ErrLicenseNotFound):
		return nil, fmt.Errorf("activate license: %w", err)
	case err != nil:
		return nil, domain.StorageError("activate license", err)
	}

	metrics.LicensesActivatedTotal.WithLabelValues(string(used.NodeType)).Inc()
	s.logger.Info().Str("license_id", used.ID).Str("user_id", used.Owner()).Msg("license activated")
	s.events.Enqueue(domain.Event{
		Type:       domain.EventLicenseActivated,
		Key:        used.Owner(),
		OccurredAt: s.now(),
		Payload:    used,
	})
	return used, nil
}

// allocationResult maps an Allocate error to its metric label.
func allocationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrAlreadyAllocated):
		return "already_allocated"
	case errors.Is(err, domain.ErrNoInventory):
		return "no_inventory"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}

// generateLicenseKey returns a key in the format UN-SW-XXXX-XXXX-XXXX.
func generateLicenseKey(nodeType domain.NodeType) string {
	prefix := "VA"
	if nodeType == domain.NodeTypeSwitch {
		prefix = "SW"
	}
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive from a fresh UUID
		u := uuid.New()
		copy(b, u[:6])
	}
	return fmt.Sprintf("UN-%s-%04X-%04X-%04X", prefix,
		uint16(b[0])<<8|uint16(b[1]),
		uint16(b[2])<<8|uint16(b[3]),
		uint16(b[4])<<8|uint16(b[5]))
}

type discardEvents struct{}

func (discardEvents) Enqueue(domain.Event) {}
