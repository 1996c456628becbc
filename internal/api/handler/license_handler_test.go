package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

type stubLicenseService struct {
	allocateFn  func(ctx context.Context, in ports.AllocateInput) (*domain.License, error)
	listFn      func(ctx context.Context, in ports.ListLicensesInput) ([]*domain.License, error)
	provisionFn func(ctx context.Context, in ports.ProvisionInput) ([]*domain.License, error)
	activateFn  func(ctx context.Context, id string) (*domain.License, error)
}

func (s *stubLicenseService) Allocate(ctx context.Context, in ports.AllocateInput) (*domain.License, error) {
	return s.allocateFn(ctx, in)
}

func (s *stubLicenseService) List(ctx context.Context, in ports.ListLicensesInput) ([]*domain.License, error) {
	return s.listFn(ctx, in)
}

func (s *stubLicenseService) Provision(ctx context.Context, in ports.ProvisionInput) ([]*domain.License, error) {
	return s.provisionFn(ctx, in)
}

func (s *stubLicenseService) Activate(ctx context.Context, id string) (*domain.License, error) {
	return s.activateFn(ctx, id)
}

func generatedLicense(userID string) *domain.License {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.License{
		ID:          "lic-1",
		LicenseKey:  "UN-SW-AAAA-BBBB-CCCC",
		Status:      domain.StatusGenerated,
		NodeType:    domain.NodeTypeSwitch,
		StakeAmount: 50000,
		UserID:      &userID,
		CreatedAt:   now.Add(-time.Hour),
		GeneratedAt: &now,
	}
}

func TestLicenseHandler_Generate_Success(t *testing.T) {
	var got ports.AllocateInput
	h := NewLicenseHandler(&stubLicenseService{
		allocateFn: func(_ context.Context, in ports.AllocateInput) (*domain.License, error) {
			got = in
			return generatedLicense(in.UserID), nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/api/licenses/generate", `{"userId":"wallet-1","nodeType":"switch"}`)
	require.NoError(t, h.Generate(c))

	assert.Equal(t, ports.AllocateInput{UserID: "wallet-1", NodeType: "switch"}, got)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    domain.License `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "License generated successfully", body.Message)
	assert.Equal(t, domain.StatusGenerated, body.Data.Status)
	assert.Equal(t, "wallet-1", body.Data.Owner())
}

func TestLicenseHandler_Generate_Validation(t *testing.T) {
	h := NewLicenseHandler(&stubLicenseService{
		allocateFn: func(context.Context, ports.AllocateInput) (*domain.License, error) {
			t.Fatal("allocator must not run on invalid input")
			return nil, nil
		},
	})

	for name, body := range map[string]string{
		"missing userId":  `{"nodeType":"switch"}`,
		"empty body":      `{}`,
		"bad nodeType":    `{"userId":"wallet-1","nodeType":"miner"}`,
		"malformed json":  `{"userId":`,
		"wrong json type": `{"userId":42}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/licenses/generate", body)
			err := h.Generate(c)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestLicenseHandler_Generate_PropagatesDomainErrors(t *testing.T) {
	existing := generatedLicense("wallet-1")
	cases := []error{
		&domain.AlreadyAllocatedError{Existing: existing},
		&domain.NoInventoryError{NodeType: domain.NodeTypeValidation},
		domain.ErrContention,
	}
	for _, want := range cases {
		h := NewLicenseHandler(&stubLicenseService{
			allocateFn: func(context.Context, ports.AllocateInput) (*domain.License, error) {
				return nil, want
			},
		})
		c, _ := newTestContext(http.MethodPost, "/api/licenses/generate", `{"userId":"wallet-1"}`)
		err := h.Generate(c)
		assert.True(t, errors.Is(err, want), "got %v", err)
		assert.Equal(t, "Failed to generate license", c.Get(CtxFailureMessage))
	}
}

func TestLicenseHandler_List(t *testing.T) {
	var got ports.ListLicensesInput
	h := NewLicenseHandler(&stubLicenseService{
		listFn: func(_ context.Context, in ports.ListLicensesInput) ([]*domain.License, error) {
			got = in
			return []*domain.License{generatedLicense("wallet-1")}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/api/licenses?status=generated&nodeType=switch&userId=wallet-1", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, ports.ListLicensesInput{Status: "generated", NodeType: "switch", UserID: "wallet-1"}, got)

	var body struct {
		Success bool              `json:"success"`
		Count   int               `json:"count"`
		Data    []*domain.License `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.Len(t, body.Data, 1)
}

func TestLicenseHandler_List_EmptyKeepsDataArray(t *testing.T) {
	h := NewLicenseHandler(&stubLicenseService{
		listFn: func(context.Context, ports.ListLicensesInput) ([]*domain.License, error) {
			return []*domain.License{}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/api/licenses", "")
	require.NoError(t, h.List(c))
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())
}

func TestLicenseHandler_List_RejectsUnknownStatus(t *testing.T) {
	h := NewLicenseHandler(&stubLicenseService{})

	c, _ := newTestContext(http.MethodGet, "/api/licenses?status=revoked", "")
	assert.ErrorIs(t, h.List(c), domain.ErrInvalidRequest)
}
