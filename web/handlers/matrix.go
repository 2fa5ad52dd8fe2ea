package handlers

import (
	"fmt"
	"net/http"

	"rfp-agent/bidform"
	"rfp-agent/database"
	"rfp-agent/report"
	"rfp-agent/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MatrixHandler serves the reconciled side-by-side comparison of all vendor
// proposals on an RFP, as JSON and as an Excel workbook.
type MatrixHandler struct {
	rfps   *RFPHandler
	store  *database.PostgresStore
	logger *zap.Logger
}

func NewMatrixHandler(rfps *RFPHandler, store *database.PostgresStore, logger *zap.Logger) *MatrixHandler {
	return &MatrixHandler{
		rfps:   rfps,
		store:  store,
		logger: logger,
	}
}

type matrixProposal struct {
	ID     string `json:"id"`
	Vendor string `json:"vendor"`
	Status string `json:"status"`
}

type matrixResponse struct {
	RFPTitle      string              `json:"rfp_title"`
	VendorColumns []string            `json:"vendor_columns"`
	FixedColumns  []string            `json:"fixed_columns"`
	Proposals     []matrixProposal    `json:"proposals"`
	Rows          []bidform.MatrixRow `json:"rows"`
}

// Get handles GET /api/rfps/:id/matrix.
func (h *MatrixHandler) Get(c *gin.Context) {
	resp, _, _, ok := h.build(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excel handles GET /api/rfps/:id/matrix.xlsx.
func (h *MatrixHandler) Excel(c *gin.Context) {
	_, matrix, datasets, ok := h.build(c)
	if !ok {
		return
	}

	f, err := report.BuildComparisonExcel(matrix, datasets)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to build the comparison workbook", h.logger)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bid_comparison.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream comparison workbook", zap.Error(err))
	}
}

func (h *MatrixHandler) build(c *gin.Context) (matrixResponse, bidform.ComparisonMatrix, []bidform.VendorProposalData, bool) {
	rfp, ok := h.rfps.loadRFP(c)
	if !ok {
		return matrixResponse{}, bidform.ComparisonMatrix{}, nil, false
	}

	rfpID := rfp.ID
	proposals, err := h.store.ListProposals(c.Request.Context(), &rfpID)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to list proposals", h.logger)
		return matrixResponse{}, bidform.ComparisonMatrix{}, nil, false
	}

	schema := rfp.FormSchema
	if schema == nil {
		fb := bidform.FallbackSchema(rfp.Title)
		schema = &fb
	}

	datasets := make([]bidform.VendorProposalData, 0, len(proposals))
	listed := make([]matrixProposal, 0, len(proposals))
	for _, p := range proposals {
		listed = append(listed, matrixProposal{
			ID:     p.ID.String(),
			Vendor: vendorLabel(p),
			Status: p.Status,
		})
		ds := bidform.VendorProposalData{
			VendorName: vendorLabel(p),
			ProposalID: p.ID.String(),
			FilledRows: p.FormData,
		}
		if p.GrandTotal != nil {
			ds.GrandTotal = bidform.FormatCurrency(*p.GrandTotal)
		}
		datasets = append(datasets, ds)
	}

	matrix := bidform.BuildMatrix(*schema, datasets)
	resp := matrixResponse{
		RFPTitle:      rfp.Title,
		VendorColumns: matrix.VendorColumns,
		FixedColumns:  matrix.FixedColumns,
		Proposals:     listed,
		Rows:          matrix.Rows,
	}
	return resp, matrix, datasets, true
}

func vendorLabel(p types.Proposal) string {
	if p.Contractor != "" {
		return p.Contractor
	}
	return fmt.Sprintf("Vendor %s", p.ID.String()[:8])
}
