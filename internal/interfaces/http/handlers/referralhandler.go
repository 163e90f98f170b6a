package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/application/referral/usecases"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/id"
	"github.com/cryptogift/ledger/internal/shared/logger"
	"github.com/cryptogift/ledger/internal/shared/utils"
)

type ReferralHandler struct {
	service      referralService
	defaultLimit int
	logger       logger.Interface
}

func NewReferralHandler(service referralService, defaultLimit int, logger logger.Interface) *ReferralHandler {
	if defaultLimit <= 0 || defaultLimit > usecases.MaxFeedLimit {
		defaultLimit = usecases.DefaultFeedLimit
	}
	return &ReferralHandler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// TrackClick handles POST /referrals/track
func (h *ReferralHandler) TrackClick(c *gin.Context) {
	var req dto.TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for track click", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	ip := req.IP
	if ip == "" {
		ip = c.ClientIP()
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	result, err := h.service.TrackClick(c.Request.Context(), usecases.TrackClickCommand{
		ReferrerAddress: req.ReferrerAddress,
		Signals: referral.VisitorSignals{
			Wallet:    req.Wallet,
			Email:     req.Email,
			IP:        ip,
			UserAgent: userAgent,
		},
		Source: req.Source,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result, "Referral tracked")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Referral updated", result)
}

// TrackClickLegacy handles POST /referrals/track-legacy
func (h *ReferralHandler) TrackClickLegacy(c *gin.Context) {
	var req dto.TrackLegacyClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for legacy track click", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.service.TrackClickLegacy(c.Request.Context(), req.ReferrerAddress, req.ReferredIdentifier, req.Source)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result, "Referral tracked")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Referral updated", result)
}

// ActivateReferral handles POST /referrals/activate
func (h *ReferralHandler) ActivateReferral(c *gin.Context) {
	var req dto.ActivateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for activate referral", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.service.ActivateReferral(c.Request.Context(), usecases.ActivateReferralCommand{
		ReferrerAddress:    req.ReferrerAddress,
		ReferredWallet:     req.ReferredWallet,
		ReferredEmail:      req.ReferredEmail,
		ReferredIdentifier: req.ReferredIdentifier,
		Gift: referral.GiftData{
			TokenID:    req.TokenID,
			Amount:     req.Amount,
			Commission: req.Commission,
			TxHash:     req.TxHash,
		},
	})
	if err != nil {
		if errors.IsNotFoundError(err) {
			h.logger.Infow("activation without prior referral",
				"referrer", utils.MaskAddress(req.ReferrerAddress),
				"referred", utils.MaskIdentity(firstNonEmpty(req.ReferredWallet, req.ReferredEmail, req.ReferredIdentifier)),
				"token_id", req.TokenID,
			)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Referral activated", result)
}

// GetStats handles GET /referrals/:address/stats
func (h *ReferralHandler) GetStats(c *gin.Context) {
	address, err := utils.ParseAddressParam(c, "address")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	refresh := false
	if raw := c.Query("refresh"); raw != "" {
		refresh, err = strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewValidationError("refresh must be true or false"))
			return
		}
	}

	result, err := h.service.GetStats(c.Request.Context(), address, refresh)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetEarningsHistory handles GET /referrals/:address/earnings
func (h *ReferralHandler) GetEarningsHistory(c *gin.Context) {
	address, err := utils.ParseAddressParam(c, "address")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.GetEarningsHistory(c.Request.Context(), address)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetPendingRewards handles GET /referrals/:address/pending
func (h *ReferralHandler) GetPendingRewards(c *gin.Context) {
	address, err := utils.ParseAddressParam(c, "address")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.GetPendingRewards(c.Request.Context(), address)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// ListReferrals handles GET /referrals/:address/list
func (h *ReferralHandler) ListReferrals(c *gin.Context) {
	address, err := utils.ParseAddressParam(c, "address")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.ListReferrals(c.Request.Context(), address)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetReferral handles GET /referrals/record/:id
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	referralID, err := utils.ParseSIDParam(c, "id", id.PrefixReferral, "referral")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.GetReferral(c.Request.Context(), referralID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// RecordSession handles POST /referrals/sessions
func (h *ReferralHandler) RecordSession(c *gin.Context) {
	var req dto.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for record session", "error", err)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	ip := req.IP
	if ip == "" {
		ip = c.ClientIP()
	}

	result, err := h.service.RecordSession(c.Request.Context(), usecases.RecordSessionCommand{
		Address:   req.Address,
		SessionID: req.SessionID,
		IP:        ip,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// GetRecentActivations handles GET /activations/recent
func (h *ReferralHandler) GetRecentActivations(c *gin.Context) {
	limit, err := utils.ParseLimitQuery(c, "limit", h.defaultLimit, usecases.MaxFeedLimit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.GetRecentActivations(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.OKResponse(c, result)
}

// CleanupRecentActivations handles POST /cron/cleanup-activations
func (h *ReferralHandler) CleanupRecentActivations(c *gin.Context) {
	result, err := h.service.CleanupRecentActivations(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Recent activations cleaned up", result)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
