package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory license store. UpdateStatus is atomic under the mutex and enforces
// one generated license per user, like the partial unique index.
// ---------------------------------------------------------------------------

type stubLicenseRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.License
	updates  int
	findErr  error
	countErr error
	// beforeUpdate runs inside UpdateStatus before the write; a non-nil
	// error is returned as-is.
	beforeUpdate func(u ports.StatusUpdate) error
}

func newStubLicenseRepo(seed ...*domain.License) *stubLicenseRepo {
	r := &stubLicenseRepo{byID: make(map[string]*domain.License)}
	for _, l := range seed {
		r.byID[l.ID] = cloneLicense(l)
	}
	return r
}

func cloneLicense(l *domain.License) *domain.License {
	if l == nil {
		return nil
	}
	c := *l
	if l.UserID != nil {
		u := *l.UserID
		c.UserID = &u
	}
	if l.GeneratedAt != nil {
		t := *l.GeneratedAt
		c.GeneratedAt = &t
	}
	if l.UsedAt != nil {
		t := *l.UsedAt
		c.UsedAt = &t
	}
	return &c
}

func matches(l *domain.License, f ports.LicenseFilter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.NodeType != "" && l.NodeType != f.NodeType {
		return false
	}
	if f.UserID != "" && l.Owner() != f.UserID {
		return false
	}
	if !f.GeneratedSince.IsZero() && (l.GeneratedAt == nil || l.GeneratedAt.Before(f.GeneratedSince)) {
		return false
	}
	return true
}

// sorted returns matching records oldest first.
func (r *stubLicenseRepo) sorted(f ports.LicenseFilter) []*domain.License {
	var out []*domain.License
	for _, l := range r.byID {
		if matches(l, f) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *stubLicenseRepo) FindOldest(_ context.Context, f ports.LicenseFilter) (*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.sorted(f)
	if len(all) == 0 {
		return nil, domain.ErrLicenseNotFound
	}
	return cloneLicense(all[0]), nil
}

func (r *stubLicenseRepo) FindFirstByUserAndStatus(_ context.Context, userID string, status domain.LicenseStatus) (*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.sorted(ports.LicenseFilter{UserID: userID, Status: status})
	if len(all) == 0 {
		return nil, domain.ErrLicenseNotFound
	}
	return cloneLicense(all[0]), nil
}

func (r *stubLicenseRepo) UpdateStatus(_ context.Context, u ports.StatusUpdate) (*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beforeUpdate != nil {
		if err := r.beforeUpdate(u); err != nil {
			return nil, err
		}
	}
	l, ok := r.byID[u.ID]
	if !ok {
		return nil, domain.ErrLicenseNotFound
	}
	if l.Status != u.Expected {
		return nil, domain.ErrStaleLicense
	}
	if u.Next == domain.StatusGenerated {
		for _, other := range r.byID {
			if other.Status == domain.StatusGenerated && other.Owner() == u.UserID {
				return nil, domain.ErrDuplicateClaim
			}
		}
	}
	r.updates++
	at := u.At
	l.Status = u.Next
	switch u.Next {
	case domain.StatusGenerated:
		user := u.UserID
		l.UserID = &user
		l.GeneratedAt = &at
	case domain.StatusUsed:
		l.UsedAt = &at
	}
	return cloneLicense(l), nil
}

func (r *stubLicenseRepo) Count(_ context.Context, f ports.LicenseFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.sorted(f))), nil
}

func (r *stubLicenseRepo) List(_ context.Context, f ports.LicenseFilter) ([]*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.sorted(f)
	out := make([]*domain.License, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, cloneLicense(all[i]))
	}
	return out, nil
}

func (r *stubLicenseRepo) FindByID(_ context.Context, id string) (*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrLicenseNotFound
	}
	return cloneLicense(l), nil
}

func (r *stubLicenseRepo) CreateBatch(_ context.Context, licenses []*domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make(map[string]bool, len(r.byID))
	for _, l := range r.byID {
		keys[l.LicenseKey] = true
	}
	for _, l := range licenses {
		if keys[l.LicenseKey] {
			return domain.ErrDuplicateLicenseKey
		}
		keys[l.LicenseKey] = true
	}
	for _, l := range licenses {
		r.byID[l.ID] = cloneLicense(l)
	}
	return nil
}

func (r *stubLicenseRepo) get(id string) *domain.License {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneLicense(r.byID[id])
}

func (r *stubLicenseRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

func availableLicense(id string, nodeType domain.NodeType, createdAt time.Time) *domain.License {
	return &domain.License{
		ID:          id,
		LicenseKey:  "UN-KEY-" + id,
		Status:      domain.StatusAvailable,
		NodeType:    nodeType,
		StakeAmount: nodeType.Stake(),
		CreatedAt:   createdAt,
	}
}

// ---------------------------------------------------------------------------
// Reward store, idempotency store and event recorder.
// ---------------------------------------------------------------------------

type stubRewardRepo struct {
	mu        sync.Mutex
	rewards   []*domain.Reward
	createErr error
	// entered is signalled when Create starts; Create then waits on block.
	entered chan struct{}
	block   chan struct{}
}

func (r *stubRewardRepo) Create(_ context.Context, rw *domain.Reward) error {
	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	c := *rw
	r.rewards = append(r.rewards, &c)
	return nil
}

func (r *stubRewardRepo) FindByID(_ context.Context, id string) (*domain.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rw := range r.rewards {
		if rw.ID == id {
			c := *rw
			return &c, nil
		}
	}
	return nil, domain.ErrRewardNotFound
}

func (r *stubRewardRepo) ListByUser(_ context.Context, userID string, period domain.RewardPeriod) ([]*domain.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Reward
	for i := len(r.rewards) - 1; i >= 0; i-- {
		rw := r.rewards[i]
		if rw.UserID == userID && rw.Period == period {
			c := *rw
			out = append(out, &c)
		}
	}
	return out, nil
}

type stubIdempotency struct {
	mu         sync.Mutex
	values     map[string]string
	reserveErr error
	released   int
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{values: make(map[string]string)}
}

func (s *stubIdempotency) Reserve(_ context.Context, scope, key, value string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return "", false, s.reserveErr
	}
	k := scope + ":" + key
	if v, ok := s.values[k]; ok {
		return v, false, nil
	}
	s.values[k] = value
	return value, true, nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, scope+":"+key)
	s.released++
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Enqueue(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

// fixedMetrics returns deterministic simulated figures.
type fixedMetrics struct{}

func (fixedMetrics) UserActivity() domain.ActivityStats {
	return domain.ActivityStats{Today: domain.ActivityWindow{MinutesFarmed: 42, MntEarned: 3, Calls: 7}}
}

func (fixedMetrics) Network(activeNodes int64) domain.NetworkStats {
	return domain.NetworkStats{TotalUsers: 1, ActiveNodes: activeNodes}
}
