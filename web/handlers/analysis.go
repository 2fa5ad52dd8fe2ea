package handlers

import (
	"errors"
	"net/http"

	"rfp-agent/agents"
	"rfp-agent/database"
	apperrors "rfp-agent/errors"
	"rfp-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisHandler serves dimension generation and cross-proposal scoring.
type AnalysisHandler struct {
	store      *database.PostgresStore
	dimensions *agents.Dimensions
	scoring    *agents.Scoring
	logger     *zap.Logger
}

func NewAnalysisHandler(store *database.PostgresStore, dimensions *agents.Dimensions, scoring *agents.Scoring, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		store:      store,
		dimensions: dimensions,
		scoring:    scoring,
		logger:     logger,
	}
}

// GenerateDimensions handles POST /api/analysis/rfps/:id/dimensions. The
// agent falls back to the six general dimensions on any failure, so this
// endpoint only errors when the RFP cannot be loaded.
func (h *AnalysisHandler) GenerateDimensions(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}
	dims := h.dimensions.Generate(c.Request.Context(), rfp)
	c.JSON(http.StatusOK, gin.H{"dimensions": dims})
}

type compareRequest struct {
	RFPID       string   `json:"rfp_id" binding:"required"`
	ProposalIDs []string `json:"proposal_ids" binding:"required"`
	Dimensions  []string `json:"dimensions" binding:"required"`
}

// Compare handles POST /api/analysis/compare. Unlike extraction, scoring has
// no safe default, so contract violations surface as errors.
func (h *AnalysisHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "rfp_id, proposal_ids, and dimensions are required")
		return
	}

	rfpID, err := uuid.Parse(req.RFPID)
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid RFP ID")
		return
	}
	rfp, err := h.store.GetRFP(c.Request.Context(), rfpID)
	if err != nil {
		respondWithLookupError(c, err, "RFP", h.logger)
		return
	}

	proposals := make([]types.Proposal, 0, len(req.ProposalIDs))
	for _, raw := range req.ProposalIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithClientError(c, http.StatusBadRequest, "Invalid proposal ID: "+raw)
			return
		}
		proposal, err := h.store.GetProposal(c.Request.Context(), id)
		if err != nil {
			respondWithLookupError(c, err, "Proposal "+raw, h.logger)
			return
		}
		proposals = append(proposals, proposal)
	}

	analyses, err := h.scoring.Compare(c.Request.Context(), rfp, proposals, req.Dimensions)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			respondWithClientError(c, http.StatusBadRequest, "At least one proposal and one dimension are required")
			return
		}
		respondWithError(c, http.StatusInternalServerError, err, "Comparison analysis failed", h.logger,
			zap.String("rfp_id", rfp.ID.String()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

func (h *AnalysisHandler) loadRFP(c *gin.Context) (types.RFP, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid RFP ID")
		return types.RFP{}, false
	}
	rfp, err := h.store.GetRFP(c.Request.Context(), id)
	if err != nil {
		respondWithLookupError(c, err, "RFP", h.logger)
		return types.RFP{}, false
	}
	return rfp, true
}
