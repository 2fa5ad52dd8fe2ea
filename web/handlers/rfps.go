package handlers

import (
	"io"
	"net/http"

	"rfp-agent/agents"
	"rfp-agent/database"
	"rfp-agent/report"
	"rfp-agent/web/format"
	"rfp-agent/web/services"
	"rfp-agent/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadBytes = 50 << 20

// RFPHandler serves RFP creation, retrieval, document upload, and the
// consultation flow.
type RFPHandler struct {
	store      *database.PostgresStore
	pipeline   *services.Pipeline
	consultant *agents.Consultant
	logger     *zap.Logger
}

func NewRFPHandler(store *database.PostgresStore, pipeline *services.Pipeline, consultant *agents.Consultant, logger *zap.Logger) *RFPHandler {
	return &RFPHandler{
		store:      store,
		pipeline:   pipeline,
		consultant: consultant,
		logger:     logger,
	}
}

type createRFPRequest struct {
	Title         string   `json:"title" binding:"required"`
	Scope         string   `json:"scope"`
	Requirements  []string `json:"requirements"`
	Budget        string   `json:"budget"`
	Currency      string   `json:"currency"`
	TimelineStart string   `json:"timeline_start"`
	TimelineEnd   string   `json:"timeline_end"`
}

// Create handles POST /api/rfps.
func (h *RFPHandler) Create(c *gin.Context) {
	var req createRFPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request: title is required")
		return
	}

	rfp := types.RFP{
		Title:         req.Title,
		Scope:         req.Scope,
		Requirements:  req.Requirements,
		Budget:        req.Budget,
		Currency:      req.Currency,
		TimelineStart: req.TimelineStart,
		TimelineEnd:   req.TimelineEnd,
		Status:        "draft",
	}
	if err := h.store.CreateRFP(c.Request.Context(), &rfp); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to create RFP", h.logger)
		return
	}
	c.JSON(http.StatusCreated, rfp)
}

// List handles GET /api/rfps.
func (h *RFPHandler) List(c *gin.Context) {
	rfps, err := h.store.ListRFPs(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to list RFPs", h.logger)
		return
	}
	c.JSON(http.StatusOK, rfps)
}

// Get handles GET /api/rfps/:id.
func (h *RFPHandler) Get(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rfp)
}

// Upload handles POST /api/rfps/upload: a PDF becomes a fully populated RFP
// with extracted details and a discovered proposal form.
func (h *RFPHandler) Upload(c *gin.Context) {
	data, filename, ok := readUploadedPDF(c)
	if !ok {
		return
	}

	id := uuid.New()
	path, err := h.pipeline.SaveUpload("rfps", id.String(), filename, data)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to store the uploaded document", h.logger)
		return
	}

	rfp, err := h.pipeline.ProcessRFPUpload(c.Request.Context(), id, path)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to process the RFP document", h.logger)
		return
	}
	c.JSON(http.StatusCreated, rfp)
}

type consultRequest struct {
	Message string                 `json:"message" binding:"required"`
	History []types.ConsultMessage `json:"history"`
}

// Consult handles POST /api/rfps/:id/consult: one turn of the drafting
// conversation, merging the assistant's field updates into the stored RFP.
func (h *RFPHandler) Consult(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}

	var req consultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Invalid request: message is required")
		return
	}

	draft := types.RFPDraft{
		Title:        rfp.Title,
		Scope:        rfp.Scope,
		Requirements: rfp.Requirements,
		Budget:       rfp.Budget,
		TimelineEnd:  rfp.TimelineEnd,
	}
	result := h.consultant.Consult(c.Request.Context(), draft, req.History, req.Message)

	rfp.Title = result.UpdatedState.Title
	rfp.Scope = result.UpdatedState.Scope
	rfp.Requirements = result.UpdatedState.Requirements
	rfp.Budget = result.UpdatedState.Budget
	rfp.TimelineEnd = result.UpdatedState.TimelineEnd
	if err := h.store.UpdateRFPDetails(c.Request.Context(), rfp); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to save RFP updates", h.logger)
		return
	}

	if result.GenerateProposalForm != nil && *result.GenerateProposalForm && rfp.FormSchema == nil {
		schema, rows, err := h.pipeline.GenerateForm(c.Request.Context(), rfp)
		if err != nil {
			h.logger.Warn("Proposal form generation failed during consultation",
				zap.String("rfp_id", rfp.ID.String()),
				zap.Error(err))
		} else {
			rfp.FormSchema = schema
			rfp.FormRows = rows
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":                  result.Reply,
		"reply_html":             format.RenderMarkdown(result.Reply),
		"rfp":                    rfp,
		"generate_proposal_form": result.GenerateProposalForm,
	})
}

// Delete handles DELETE /api/rfps/:id, removing the RFP with its proposals
// and indexed documents.
func (h *RFPHandler) Delete(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}
	if err := h.pipeline.DeleteRFP(c.Request.Context(), rfp); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to delete RFP", h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPDF handles GET /api/rfps/:id/report.pdf.
func (h *RFPHandler) ExportPDF(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}

	pdfBytes, err := report.BuildRFPPDF(rfp)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to generate the RFP report", h.logger)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rfp_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// Reextract handles POST /api/rfps/:id/extract: re-runs bid form extraction
// across every proposal on the RFP.
func (h *RFPHandler) Reextract(c *gin.Context) {
	rfp, ok := h.loadRFP(c)
	if !ok {
		return
	}

	updated, err := h.pipeline.ReextractProposals(c.Request.Context(), rfp)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to re-extract proposals", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *RFPHandler) loadRFP(c *gin.Context) (types.RFP, bool) {
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

// readUploadedPDF pulls the "file" part out of a multipart upload.
func readUploadedPDF(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "A PDF file is required")
		return nil, "", false
	}
	if fileHeader.Size > maxUploadBytes {
		respondWithClientError(c, http.StatusRequestEntityTooLarge, "File exceeds the 50MB upload limit")
		return nil, "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Could not read the uploaded file")
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Could not read the uploaded file")
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}
