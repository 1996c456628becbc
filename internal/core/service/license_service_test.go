package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestLicenseService(repo *stubLicenseRepo, opts ...LicenseServiceOption) (*LicenseService, *recordingSink) {
	sink := &recordingSink{}
	opts = append([]LicenseServiceOption{WithClock(func() time.Time { return t0.Add(time.Hour) })}, opts...)
	return NewLicenseService(repo, sink, zerolog.Nop(), opts...), sink
}

func TestLicenseService_Allocate_ExampleScenario(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("1", domain.NodeTypeSwitch, t0),
		availableLicense("2", domain.NodeTypeSwitch, t0.Add(time.Minute)),
	)
	svc, sink := newTestLicenseService(repo)
	ctx := context.Background()

	lic, err := svc.Allocate(ctx, ports.AllocateInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("u1 allocate: %v", err)
	}
	if lic.ID != "1" || lic.Status != domain.StatusGenerated || lic.Owner() != "u1" {
		t.Fatalf("unexpected license for u1: %+v", lic)
	}
	if lic.GeneratedAt == nil || !lic.GeneratedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expected generatedAt stamped, got %v", lic.GeneratedAt)
	}

	_, err = svc.Allocate(ctx, ports.AllocateInput{UserID: "u1"})
	var already *domain.AlreadyAllocatedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyAllocatedError, got %v", err)
	}
	if already.Existing.ID != "1" {
		t.Fatalf("expected existing license 1, got %s", already.Existing.ID)
	}

	lic, err = svc.Allocate(ctx, ports.AllocateInput{UserID: "u2"})
	if err != nil {
		t.Fatalf("u2 allocate: %v", err)
	}
	if lic.ID != "2" {
		t.Fatalf("expected license 2 for u2, got %s", lic.ID)
	}

	_, err = svc.Allocate(ctx, ports.AllocateInput{UserID: "u3"})
	if !errors.Is(err, domain.ErrNoInventory) {
		t.Fatalf("expected ErrNoInventory for u3, got %v", err)
	}

	if got := repo.writes(); got != 2 {
		t.Fatalf("expected exactly 2 writes, got %d", got)
	}
	types := sink.types()
	if len(types) != 2 || types[0] != domain.EventLicenseGenerated {
		t.Fatalf("expected two license.generated events, got %v", types)
	}
}

func TestLicenseService_Allocate_FIFO(t *testing.T) {
	// Inserted out of order on purpose.
	repo := newStubLicenseRepo(
		availableLicense("c", domain.NodeTypeValidation, t0.Add(2*time.Minute)),
		availableLicense("a", domain.NodeTypeValidation, t0),
		availableLicense("b", domain.NodeTypeValidation, t0.Add(time.Minute)),
	)
	svc, _ := newTestLicenseService(repo)

	for i, want := range []string{"a", "b", "c"} {
		lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: fmt.Sprintf("user-%d", i)})
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		if lic.ID != want {
			t.Fatalf("allocation %d: expected %s, got %s", i, want, lic.ID)
		}
	}
}

func TestLicenseService_Allocate_CategoryFilter(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("sw", domain.NodeTypeSwitch, t0),
		availableLicense("va", domain.NodeTypeValidation, t0.Add(time.Minute)),
	)
	svc, _ := newTestLicenseService(repo)
	ctx := context.Background()

	lic, err := svc.Allocate(ctx, ports.AllocateInput{UserID: "u1", NodeType: "validation"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if lic.ID != "va" || lic.NodeType != domain.NodeTypeValidation || lic.StakeAmount != 10000 {
		t.Fatalf("expected the validation license, got %+v", lic)
	}

	_, err = svc.Allocate(ctx, ports.AllocateInput{UserID: "u2", NodeType: "validation"})
	var none *domain.NoInventoryError
	if !errors.As(err, &none) {
		t.Fatalf("expected NoInventoryError, got %v", err)
	}
	if none.NodeType != domain.NodeTypeValidation {
		t.Fatalf("expected category validation on error, got %q", none.NodeType)
	}

	// The switch record is untouched by the filtered requests.
	if got := repo.get("sw"); got.Status != domain.StatusAvailable {
		t.Fatalf("switch license should still be available, got %s", got.Status)
	}
}

func TestLicenseService_Allocate_InvalidRequest(t *testing.T) {
	repo := newStubLicenseRepo(availableLicense("1", domain.NodeTypeSwitch, t0))
	svc, _ := newTestLicenseService(repo)

	cases := []ports.AllocateInput{
		{UserID: ""},
		{UserID: "   "},
		{UserID: "u1", NodeType: "miner"},
	}
	for _, in := range cases {
		if _, err := svc.Allocate(context.Background(), in); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("input %+v: expected ErrInvalidRequest, got %v", in, err)
		}
	}
	if repo.writes() != 0 {
		t.Fatalf("invalid requests must not write")
	}
}

func TestLicenseService_Allocate_TrimsRequester(t *testing.T) {
	repo := newStubLicenseRepo(availableLicense("1", domain.NodeTypeSwitch, t0))
	svc, _ := newTestLicenseService(repo)

	lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "  alice "})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if lic.Owner() != "alice" {
		t.Fatalf("expected trimmed owner, got %q", lic.Owner())
	}
}

func TestLicenseService_Allocate_EmptyInventoryDoesNotWrite(t *testing.T) {
	repo := newStubLicenseRepo()
	svc, sink := newTestLicenseService(repo)

	_, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if !errors.Is(err, domain.ErrNoInventory) {
		t.Fatalf("expected ErrNoInventory, got %v", err)
	}
	if repo.writes() != 0 || len(sink.types()) != 0 {
		t.Fatalf("exhaustion must not write or emit events")
	}
}

func TestLicenseService_Allocate_RetriesLostClaim(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("1", domain.NodeTypeSwitch, t0),
		availableLicense("2", domain.NodeTypeSwitch, t0.Add(time.Minute)),
	)
	// Simulate another request claiming license 1 between select and claim.
	stolen := false
	repo.beforeUpdate = func(u ports.StatusUpdate) error {
		if u.ID == "1" && !stolen {
			stolen = true
			owner := "someone-else"
			repo.byID["1"].Status = domain.StatusGenerated
			repo.byID["1"].UserID = &owner
		}
		return nil
	}
	svc, _ := newTestLicenseService(repo)

	lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if lic.ID != "2" {
		t.Fatalf("expected retry to claim license 2, got %s", lic.ID)
	}
	if got := repo.get("1"); got.Owner() != "someone-else" {
		t.Fatalf("license 1 must keep its concurrent owner, got %q", got.Owner())
	}
}

func TestLicenseService_Allocate_ContentionExhausted(t *testing.T) {
	repo := newStubLicenseRepo(availableLicense("1", domain.NodeTypeSwitch, t0))
	attempts := 0
	repo.beforeUpdate = func(ports.StatusUpdate) error {
		attempts++
		return domain.ErrStaleLicense
	}
	svc, _ := newTestLicenseService(repo, WithMaxAttempts(4))

	_, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if !errors.Is(err, domain.ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 claim attempts, got %d", attempts)
	}
}

func TestLicenseService_Allocate_DuplicateClaimReturnsExisting(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("1", domain.NodeTypeSwitch, t0),
		availableLicense("2", domain.NodeTypeSwitch, t0.Add(time.Minute)),
	)
	// A parallel request for the same user wins license 2 right before our claim.
	repo.beforeUpdate = func(u ports.StatusUpdate) error {
		if u.ID == "1" && repo.byID["2"].Status == domain.StatusAvailable {
			owner := u.UserID
			repo.byID["2"].Status = domain.StatusGenerated
			repo.byID["2"].UserID = &owner
			at := u.At
			repo.byID["2"].GeneratedAt = &at
		}
		return nil
	}
	svc, _ := newTestLicenseService(repo)

	_, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	var already *domain.AlreadyAllocatedError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyAllocatedError, got %v", err)
	}
	if already.Existing.ID != "2" {
		t.Fatalf("expected the parallel claim to be reported, got %s", already.Existing.ID)
	}
	if got := repo.get("1"); got.Status != domain.StatusAvailable {
		t.Fatalf("license 1 must remain available, got %s", got.Status)
	}
}

func TestLicenseService_Allocate_DuplicateClaimWithoutHolderIsContention(t *testing.T) {
	repo := newStubLicenseRepo(availableLicense("1", domain.NodeTypeSwitch, t0))
	// The store reports a duplicate claim, but the requester's other license
	// is no longer visible by the time the pre-check runs again.
	repo.beforeUpdate = func(ports.StatusUpdate) error {
		return domain.ErrDuplicateClaim
	}
	svc, _ := newTestLicenseService(repo)

	_, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if !errors.Is(err, domain.ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
	if errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("a vanished parallel claim is not a storage failure: %v", err)
	}
	if got := repo.get("1"); got.Status != domain.StatusAvailable {
		t.Fatalf("license 1 must remain available, got %s", got.Status)
	}
}

func TestLicenseService_Allocate_StorageFailure(t *testing.T) {
	repo := newStubLicenseRepo(availableLicense("1", domain.NodeTypeSwitch, t0))
	boom := errors.New("connection reset")
	repo.findErr = boom
	svc, _ := newTestLicenseService(repo)

	_, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestLicenseService_Allocate_ConcurrentRequestersNeverShareALicense(t *testing.T) {
	const licenses, users = 20, 50
	var seed []*domain.License
	for i := 0; i < licenses; i++ {
		seed = append(seed, availableLicense(fmt.Sprintf("lic-%02d", i), domain.NodeTypeSwitch, t0.Add(time.Duration(i)*time.Second)))
	}
	repo := newStubLicenseRepo(seed...)
	svc, _ := newTestLicenseService(repo, WithMaxAttempts(licenses+1))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		owners  = make(map[string]string)
		noStock int
		other   []error
	)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: user})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if prev, dup := owners[lic.ID]; dup {
					other = append(other, fmt.Errorf("license %s given to %s and %s", lic.ID, prev, user))
				}
				owners[lic.ID] = user
			case errors.Is(err, domain.ErrNoInventory):
				noStock++
			default:
				other = append(other, err)
			}
		}(fmt.Sprintf("user-%02d", i))
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if len(owners) != licenses {
		t.Fatalf("expected %d successful allocations, got %d", licenses, len(owners))
	}
	if noStock != users-licenses {
		t.Fatalf("expected %d NoInventory results, got %d", users-licenses, noStock)
	}
}

func TestLicenseService_Allocate_ConcurrentSameRequester(t *testing.T) {
	var seed []*domain.License
	for i := 0; i < 10; i++ {
		seed = append(seed, availableLicense(fmt.Sprintf("lic-%02d", i), domain.NodeTypeSwitch, t0.Add(time.Duration(i)*time.Second)))
	}
	repo := newStubLicenseRepo(seed...)
	svc, _ := newTestLicenseService(repo, WithMaxAttempts(20))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		won      []string
		rejected int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "same-user"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				won = append(won, lic.ID)
				return
			}
			if errors.Is(err, domain.ErrAlreadyAllocated) {
				rejected++
			}
		}()
	}
	wg.Wait()

	if len(won) != 1 || rejected != 9 {
		t.Fatalf("expected one winner and 9 AlreadyAllocated, got winners=%v rejected=%d", won, rejected)
	}
	n, _ := repo.Count(context.Background(), ports.LicenseFilter{Status: domain.StatusGenerated, UserID: "same-user"})
	if n != 1 {
		t.Fatalf("expected one generated license for the user, got %d", n)
	}
}

func TestLicenseService_List(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("old", domain.NodeTypeSwitch, t0),
		availableLicense("new", domain.NodeTypeValidation, t0.Add(time.Minute)),
	)
	svc, _ := newTestLicenseService(repo)

	all, err := svc.List(context.Background(), ports.ListLicensesInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "new" {
		t.Fatalf("expected newest first, got %v", all)
	}

	filtered, err := svc.List(context.Background(), ports.ListLicensesInput{NodeType: "switch"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "old" {
		t.Fatalf("unexpected filtered result: %v", filtered)
	}

	if _, err := svc.List(context.Background(), ports.ListLicensesInput{Status: "burned"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown status, got %v", err)
	}
}

var keyPattern = regexp.MustCompile(`^UN-(SW|VA)-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

func TestLicenseService_Provision(t *testing.T) {
	repo := newStubLicenseRepo()
	svc, sink := newTestLicenseService(repo)

	batch, err := svc.Provision(context.Background(), ports.ProvisionInput{NodeType: "switch", Count: 5})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 licenses, got %d", len(batch))
	}
	seen := make(map[string]bool)
	for _, l := range batch {
		if l.Status != domain.StatusAvailable || l.StakeAmount != 50000 || l.UserID != nil {
			t.Fatalf("unexpected provisioned license: %+v", l)
		}
		if !keyPattern.MatchString(l.LicenseKey) || l.LicenseKey[3:5] != "SW" {
			t.Fatalf("bad license key %q", l.LicenseKey)
		}
		if seen[l.LicenseKey] {
			t.Fatalf("duplicate key %q", l.LicenseKey)
		}
		seen[l.LicenseKey] = true
	}
	if len(sink.types()) != 5 {
		t.Fatalf("expected one provisioned event per license")
	}

	// Provisioned stock is allocated in insertion order.
	lic, err := svc.Allocate(context.Background(), ports.AllocateInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if lic.ID != batch[0].ID {
		t.Fatalf("expected first provisioned license, got %s", lic.ID)
	}
}

func TestLicenseService_Provision_Validation(t *testing.T) {
	svc, _ := newTestLicenseService(newStubLicenseRepo())

	cases := []ports.ProvisionInput{
		{NodeType: "", Count: 1},
		{NodeType: "switch", Count: 0},
		{NodeType: "switch", Count: 1001},
	}
	for _, in := range cases {
		if _, err := svc.Provision(context.Background(), in); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("input %+v: expected ErrInvalidRequest, got %v", in, err)
		}
	}
}

func TestLicenseService_Activate(t *testing.T) {
	repo := newStubLicenseRepo(
		availableLicense("1", domain.NodeTypeSwitch, t0),
		availableLicense("2", domain.NodeTypeSwitch, t0.Add(time.Minute)),
	)
	svc, _ := newTestLicenseService(repo)
	ctx := context.Background()

	if _, err := svc.Allocate(ctx, ports.AllocateInput{UserID: "u1"}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	used, err := svc.Activate(ctx, "1")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if used.Status != domain.StatusUsed || used.UsedAt == nil || used.Owner() != "u1" {
		t.Fatalf("unexpected activated license: %+v", used)
	}

	// used -> used and available -> used are both rejected.
	if _, err := svc.Activate(ctx, "1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for used license, got %v", err)
	}
	if _, err := svc.Activate(ctx, "2"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for available license, got %v", err)
	}
	if _, err := svc.Activate(ctx, "missing"); !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("expected ErrLicenseNotFound, got %v", err)
	}

	// Once the first license is used the holder may allocate again.
	lic, err := svc.Allocate(ctx, ports.AllocateInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("allocate after activation: %v", err)
	}
	if lic.ID != "2" {
		t.Fatalf("expected license 2, got %s", lic.ID)
	}
}
