package handlers

import (
	"net/http"

	"rfp-agent/database"
	"rfp-agent/notify"
	"rfp-agent/web/services"
	"rfp-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalHandler serves proposal creation, upload, and the approval
// workflow.
type ProposalHandler struct {
	store    *database.PostgresStore
	pipeline *services.Pipeline
	emails   *notify.EmailService
	logger   *zap.Logger
}

func NewProposalHandler(store *database.PostgresStore, pipeline *services.Pipeline, emails *notify.EmailService, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		store:    store,
		pipeline: pipeline,
		emails:   emails,
		logger:   logger,
	}
}

type createProposalRequest struct {
	RFPID           string `json:"rfp_id" binding:"required"`
	Contractor      string `json:"contractor"`
	ContractorEmail string `json:"contractor_email"`
}

// Create handles POST /api/proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	var req createProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request: rfp_id is required")
		return
	}
	rfpID, err := uuid.Parse(req.RFPID)
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid RFP ID")
		return
	}
	if _, err := h.store.GetRFP(c.Request.Context(), rfpID); err != nil {
		respondWithLookupError(c, err, "RFP", h.logger)
		return
	}

	proposal := types.Proposal{
		RFPID:           rfpID,
		Contractor:      req.Contractor,
		ContractorEmail: req.ContractorEmail,
		Status:          types.ProposalStatusPending,
	}
	if err := h.store.CreateProposal(c.Request.Context(), &proposal); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to create proposal", h.logger)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

// List handles GET /api/proposals, optionally filtered by ?rfp_id=.
func (h *ProposalHandler) List(c *gin.Context) {
	var rfpID *uuid.UUID
	if raw := c.Query("rfp_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithClientError(c, http.StatusBadRequest, "Invalid RFP ID")
			return
		}
		rfpID = &id
	}

	proposals, err := h.store.ListProposals(c.Request.Context(), rfpID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to list proposals", h.logger)
		return
	}
	c.JSON(http.StatusOK, proposals)
}

// Get handles GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	proposal, ok := h.loadProposal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, proposal)
}

// Upload handles POST /api/proposals/upload: creates the proposal record,
// then runs the full extraction pipeline over the uploaded PDF.
func (h *ProposalHandler) Upload(c *gin.Context) {
	rfpID, err := uuid.Parse(c.PostForm("rfp_id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "A valid rfp_id form field is required")
		return
	}
	rfp, err := h.store.GetRFP(c.Request.Context(), rfpID)
	if err != nil {
		respondWithLookupError(c, err, "RFP", h.logger)
		return
	}

	data, filename, ok := readUploadedPDF(c)
	if !ok {
		return
	}

	proposal := types.Proposal{
		RFPID:           rfpID,
		Contractor:      c.PostForm("contractor"),
		ContractorEmail: c.PostForm("contractor_email"),
		Status:          types.ProposalStatusPending,
	}
	if err := h.store.CreateProposal(c.Request.Context(), &proposal); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to create proposal", h.logger)
		return
	}

	path, err := h.pipeline.SaveUpload("proposals", proposal.ID.String(), filename, data)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to store the uploaded document", h.logger)
		return
	}

	processed, err := h.pipeline.ProcessProposalUpload(c.Request.Context(), proposal, rfp, path)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to process the proposal document", h.logger,
			zap.String("proposal_id", proposal.ID.String()))
		return
	}
	c.JSON(http.StatusCreated, processed)
}

// Delete handles DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	proposal, ok := h.loadProposal(c)
	if !ok {
		return
	}
	if err := h.pipeline.DeleteProposal(c.Request.Context(), proposal); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to delete proposal", h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// Approve handles POST /api/proposals/:id/approve.
func (h *ProposalHandler) Approve(c *gin.Context) {
	h.setStatus(c, types.ProposalStatusApproved)
}

// Reject handles POST /api/proposals/:id/reject.
func (h *ProposalHandler) Reject(c *gin.Context) {
	h.setStatus(c, types.ProposalStatusRejected)
}

func (h *ProposalHandler) setStatus(c *gin.Context, status string) {
	proposal, ok := h.loadProposal(c)
	if !ok {
		return
	}

	if err := h.store.SetProposalStatus(c.Request.Context(), proposal.ID, status); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to update proposal status", h.logger)
		return
	}
	proposal.Status = status

	rfp, err := h.store.GetRFP(c.Request.Context(), proposal.RFPID)
	if err != nil {
		h.logger.Warn("Could not load RFP for notification",
			zap.String("proposal_id", proposal.ID.String()),
			zap.Error(err))
	} else if status == types.ProposalStatusApproved {
		h.emails.SendApproval(proposal, rfp)
	} else {
		h.emails.SendRejection(proposal, rfp)
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) loadProposal(c *gin.Context) (types.Proposal, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid proposal ID")
		return types.Proposal{}, false
	}
	proposal, err := h.store.GetProposal(c.Request.Context(), id)
	if err != nil {
		respondWithLookupError(c, err, "Proposal", h.logger)
		return types.Proposal{}, false
	}
	return proposal, true
}
