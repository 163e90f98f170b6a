package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/application/referral/usecases"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/interfaces/http/handlers/testutil"
	"github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const (
	testReferrer = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testWallet   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbabbbbb"
)

// =====================================================================
// Mock referral service
// =====================================================================

type mockReferralService struct {
	trackClickFn       func(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error)
	trackClickLegacyFn func(ctx context.Context, referrer, identifier, source string) (*dto.TrackClickResponse, error)
	activateFn         func(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error)
	getStatsFn         func(ctx context.Context, referrer string, refresh bool) (*dto.ReferralStatsDTO, error)
	getEarningsFn      func(ctx context.Context, referrer string) ([]dto.EarningsEntryDTO, error)
	getPendingFn       func(ctx context.Context, referrer string) (*dto.PendingRewardsDTO, error)
	getRecentFn        func(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error)
	cleanupFn          func(ctx context.Context) (*dto.CleanupResult, error)
	listReferralsFn    func(ctx context.Context, referrer string) ([]*dto.ReferralDTO, error)
	getReferralFn      func(ctx context.Context, referralID string) (*dto.ReferralDTO, error)
	recordSessionFn    func(ctx context.Context, cmd usecases.RecordSessionCommand) (*dto.SessionSummaryDTO, error)
}

func (m *mockReferralService) TrackClick(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error) {
	if m.trackClickFn != nil {
		return m.trackClickFn(ctx, cmd)
	}
	return &dto.TrackClickResponse{}, nil
}

func (m *mockReferralService) TrackClickLegacy(ctx context.Context, referrer, identifier, source string) (*dto.TrackClickResponse, error) {
	if m.trackClickLegacyFn != nil {
		return m.trackClickLegacyFn(ctx, referrer, identifier, source)
	}
	return &dto.TrackClickResponse{}, nil
}

func (m *mockReferralService) ActivateReferral(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error) {
	if m.activateFn != nil {
		return m.activateFn(ctx, cmd)
	}
	return &dto.ActivationResult{}, nil
}

func (m *mockReferralService) GetStats(ctx context.Context, referrer string, refresh bool) (*dto.ReferralStatsDTO, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, referrer, refresh)
	}
	return &dto.ReferralStatsDTO{}, nil
}

func (m *mockReferralService) GetEarningsHistory(ctx context.Context, referrer string) ([]dto.EarningsEntryDTO, error) {
	if m.getEarningsFn != nil {
		return m.getEarningsFn(ctx, referrer)
	}
	return nil, nil
}

func (m *mockReferralService) GetPendingRewards(ctx context.Context, referrer string) (*dto.PendingRewardsDTO, error) {
	if m.getPendingFn != nil {
		return m.getPendingFn(ctx, referrer)
	}
	return &dto.PendingRewardsDTO{}, nil
}

func (m *mockReferralService) GetRecentActivations(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error) {
	if m.getRecentFn != nil {
		return m.getRecentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockReferralService) CleanupRecentActivations(ctx context.Context) (*dto.CleanupResult, error) {
	if m.cleanupFn != nil {
		return m.cleanupFn(ctx)
	}
	return &dto.CleanupResult{}, nil
}

func (m *mockReferralService) ListReferrals(ctx context.Context, referrer string) ([]*dto.ReferralDTO, error) {
	if m.listReferralsFn != nil {
		return m.listReferralsFn(ctx, referrer)
	}
	return nil, nil
}

func (m *mockReferralService) GetReferral(ctx context.Context, referralID string) (*dto.ReferralDTO, error) {
	if m.getReferralFn != nil {
		return m.getReferralFn(ctx, referralID)
	}
	return &dto.ReferralDTO{}, nil
}

func (m *mockReferralService) RecordSession(ctx context.Context, cmd usecases.RecordSessionCommand) (*dto.SessionSummaryDTO, error) {
	if m.recordSessionFn != nil {
		return m.recordSessionFn(ctx, cmd)
	}
	return &dto.SessionSummaryDTO{}, nil
}

func newTestReferralHandler(svc *mockReferralService) *ReferralHandler {
	return NewReferralHandler(svc, 10, logger.NewNop())
}

// =====================================================================
// TrackClick
// =====================================================================

func TestReferralHandler_TrackClick_DefaultsFromRequest(t *testing.T) {
	var got usecases.TrackClickCommand
	svc := &mockReferralService{
		trackClickFn: func(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error) {
			got = cmd
			return &dto.TrackClickResponse{ReferralID: "ref_abc", Created: true}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/track", map[string]any{
		"referrer_address": testReferrer,
		"wallet":           testWallet,
		"source":           "twitter",
	})
	c.Request.Header.Set("User-Agent", "gift-browser/1.0")
	testutil.SetRemoteAddr(c, "203.0.113.9:5555")

	h.TrackClick(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testReferrer, got.ReferrerAddress)
	assert.Equal(t, testWallet, got.Signals.Wallet)
	assert.Equal(t, "203.0.113.9", got.Signals.IP)
	assert.Equal(t, "gift-browser/1.0", got.Signals.UserAgent)
	assert.Equal(t, "twitter", got.Source)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	var data dto.TrackClickResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "ref_abc", data.ReferralID)
}

func TestReferralHandler_TrackClick_ExistingReturnsOK(t *testing.T) {
	svc := &mockReferralService{
		trackClickFn: func(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error) {
			assert.Equal(t, "198.51.100.1", cmd.Signals.IP, "explicit ip wins over the client address")
			return &dto.TrackClickResponse{ReferralID: "ref_abc"}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/track", map[string]any{
		"referrer_address": testReferrer,
		"ip":               "198.51.100.1",
	})
	h.TrackClick(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReferralHandler_TrackClick_ValidationError(t *testing.T) {
	called := false
	svc := &mockReferralService{
		trackClickFn: func(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error) {
			called = true
			return nil, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/track", map[string]any{
		"referrer_address": "alice",
	})
	h.TrackClick(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ErrorTypeValidation), resp.Error.Type)
	assert.Contains(t, resp.Error.Details, "referrer_address")
}

func TestReferralHandler_TrackClickLegacy(t *testing.T) {
	svc := &mockReferralService{
		trackClickLegacyFn: func(ctx context.Context, referrer, identifier, source string) (*dto.TrackClickResponse, error) {
			assert.Equal(t, "192.168.0.42", identifier)
			return &dto.TrackClickResponse{ReferralID: "ref_legacy", Created: true}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/track-legacy", map[string]any{
		"referrer_address":    testReferrer,
		"referred_identifier": "192.168.0.42",
	})
	h.TrackClickLegacy(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

// =====================================================================
// ActivateReferral
// =====================================================================

func TestReferralHandler_ActivateReferral(t *testing.T) {
	estimated := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	svc := &mockReferralService{
		activateFn: func(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error) {
			assert.Equal(t, "42", cmd.Gift.TokenID)
			assert.True(t, decimal.RequireFromString("10.5").Equal(cmd.Gift.Amount))
			assert.True(t, decimal.RequireFromString("1.05").Equal(cmd.Gift.Commission))
			return &dto.ActivationResult{
				ReferralID:           "ref_abc",
				GiftID:               "gift_xyz",
				Status:               "activated",
				PaymentStatus:        "pending_blockchain",
				EstimatedPaymentDate: &estimated,
				TotalEarnings:        cmd.Gift.Commission,
				GiftCount:            1,
			}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/activate", map[string]any{
		"referrer_address": testReferrer,
		"referred_wallet":  testWallet,
		"token_id":         "42",
		"amount":           "10.5",
		"commission":       1.05,
	})
	h.ActivateReferral(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "pending_blockchain", data["payment_status"])
	assert.Equal(t, "1.05", data["total_earnings"])
}

func TestReferralHandler_ActivateReferral_NotFound(t *testing.T) {
	svc := &mockReferralService{
		activateFn: func(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error) {
			return nil, errors.NewNotFoundError(referral.ErrReferralNotFound.Error()).WithCause(referral.ErrReferralNotFound)
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/activate", map[string]any{
		"referrer_address": testReferrer,
		"referred_wallet":  testWallet,
		"token_id":         "42",
	})
	h.ActivateReferral(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "no referral found for activation", resp.Error.Message)
}

func TestReferralHandler_ActivateReferral_MissingTokenID(t *testing.T) {
	h := newTestReferralHandler(&mockReferralService{})

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/activate", map[string]any{
		"referrer_address": testReferrer,
	})
	h.ActivateReferral(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReferralHandler_ActivateReferral_InternalErrorHidden(t *testing.T) {
	svc := &mockReferralService{
		activateFn: func(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error) {
			return nil, stderrors.New("redis: connection refused")
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/activate", map[string]any{
		"referrer_address": testReferrer,
		"token_id":         "1",
	})
	h.ActivateReferral(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

// =====================================================================
// Queries
// =====================================================================

func TestReferralHandler_GetStats(t *testing.T) {
	tests := []struct {
		name        string
		address     string
		query       map[string]string
		wantStatus  int
		wantRefresh bool
	}{
		{name: "cached", address: testReferrer, wantStatus: http.StatusOK},
		{name: "refresh", address: testReferrer, query: map[string]string{"refresh": "true"}, wantStatus: http.StatusOK, wantRefresh: true},
		{name: "bad refresh", address: testReferrer, query: map[string]string{"refresh": "maybe"}, wantStatus: http.StatusBadRequest},
		{name: "bad address", address: "0x123", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRefresh bool
			svc := &mockReferralService{
				getStatsFn: func(ctx context.Context, referrer string, refresh bool) (*dto.ReferralStatsDTO, error) {
					gotRefresh = refresh
					return &dto.ReferralStatsDTO{ReferrerAddress: referrer}, nil
				},
			}
			h := newTestReferralHandler(svc)

			c, w := testutil.NewTestContext(http.MethodGet, "/referrals/"+tt.address+"/stats", nil)
			testutil.SetURLParam(c, "address", tt.address)
			if tt.query != nil {
				testutil.SetQueryParams(c, tt.query)
			}
			h.GetStats(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRefresh, gotRefresh)
		})
	}
}

func TestReferralHandler_AddressIsLowerCased(t *testing.T) {
	var got string
	svc := &mockReferralService{
		getEarningsFn: func(ctx context.Context, referrer string) ([]dto.EarningsEntryDTO, error) {
			got = referrer
			return []dto.EarningsEntryDTO{}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodGet, "/referrals/x/earnings", nil)
	testutil.SetURLParam(c, "address", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	h.GetEarningsHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testReferrer, got)
}

func TestReferralHandler_GetReferral(t *testing.T) {
	svc := &mockReferralService{
		getReferralFn: func(ctx context.Context, referralID string) (*dto.ReferralDTO, error) {
			return &dto.ReferralDTO{ID: referralID}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodGet, "/referrals/record/ref_abc", nil)
	testutil.SetURLParam(c, "id", "ref_abc")
	h.GetReferral(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/referrals/record/gift_abc", nil)
	testutil.SetURLParam(c, "id", "gift_abc")
	h.GetReferral(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReferralHandler_GetRecentActivations(t *testing.T) {
	tests := []struct {
		name       string
		query      map[string]string
		wantLimit  int
		wantStatus int
	}{
		{name: "default", wantLimit: 10, wantStatus: http.StatusOK},
		{name: "explicit", query: map[string]string{"limit": "5"}, wantLimit: 5, wantStatus: http.StatusOK},
		{name: "capped", query: map[string]string{"limit": "5000"}, wantLimit: usecases.MaxFeedLimit, wantStatus: http.StatusOK},
		{name: "invalid", query: map[string]string{"limit": "-1"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			svc := &mockReferralService{
				getRecentFn: func(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error) {
					gotLimit = limit
					return []dto.ActivationEventDTO{}, nil
				},
			}
			h := newTestReferralHandler(svc)

			c, w := testutil.NewTestContext(http.MethodGet, "/activations/recent", nil)
			if tt.query != nil {
				testutil.SetQueryParams(c, tt.query)
			}
			h.GetRecentActivations(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantLimit, gotLimit)
		})
	}
}

func TestReferralHandler_RecordSession(t *testing.T) {
	svc := &mockReferralService{
		recordSessionFn: func(ctx context.Context, cmd usecases.RecordSessionCommand) (*dto.SessionSummaryDTO, error) {
			assert.Equal(t, "sess-1", cmd.SessionID)
			return &dto.SessionSummaryDTO{Address: cmd.Address, SessionCount: 1}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/referrals/sessions", map[string]any{
		"address":    testReferrer,
		"session_id": "sess-1",
	})
	h.RecordSession(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReferralHandler_CleanupRecentActivations(t *testing.T) {
	svc := &mockReferralService{
		cleanupFn: func(ctx context.Context) (*dto.CleanupResult, error) {
			return &dto.CleanupResult{Removed: 3}, nil
		},
	}
	h := newTestReferralHandler(svc)

	c, w := testutil.NewTestContext(http.MethodPost, "/cron/cleanup-activations", nil)
	h.CleanupRecentActivations(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":3`)
}
