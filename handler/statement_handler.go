package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/config"
	"github.com/gvr2111/statement-importer/dto"
	"github.com/gvr2111/statement-importer/service"
)

type StatementHandler struct {
	statementService *service.StatementService
	importService    *service.ImportService
	cfg              *config.Config
	logger           zerolog.Logger
}

func NewStatementHandler(
	statementService *service.StatementService,
	importService *service.ImportService,
	cfg *config.Config,
	logger zerolog.Logger,
) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		importService:    importService,
		cfg:              cfg,
		logger:           logger,
	}
}

// ParseStatement handles POST /statements/parse
func (h *StatementHandler) ParseStatement(c *gin.Context) {
	data, req, ok := h.readStatement(c)
	if !ok {
		return
	}

	statement, err := h.statementService.ParseStatement(data, req.Password)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ParseResponse{
		Statement:   *statement,
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}

// VerifyStatement handles POST /statements/verify
func (h *StatementHandler) VerifyStatement(c *gin.Context) {
	data, req, ok := h.readStatement(c)
	if !ok {
		return
	}

	response, err := h.importService.VerifyStatement(c.Request.Context(), data, req.Password)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ImportStatement handles POST /statements/import
func (h *StatementHandler) ImportStatement(c *gin.Context) {
	data, req, ok := h.readStatement(c)
	if !ok {
		return
	}

	response, err := h.importService.Import(c.Request.Context(), data, req.Password, req.DryRun)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// readStatement binds the multipart upload shared by all three endpoints.
// The configured default password applies when the request carries none.
func (h *StatementHandler) readStatement(c *gin.Context) ([]byte, dto.StatementRequest, bool) {
	var req dto.StatementRequest
	if err := c.ShouldBind(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid request", err)
		return nil, req, false
	}
	if err := req.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid request", err)
		return nil, req, false
	}
	if req.File.Size > h.cfg.MaxFileSize {
		h.sendError(c, http.StatusRequestEntityTooLarge, "statement file too large", nil)
		return nil, req, false
	}

	data, err := readAll(req.File)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to read statement file", err)
		return nil, req, false
	}

	if req.Password == "" {
		req.Password = h.cfg.PDFPassword
	}
	return data, req, true
}

// sendPipelineError maps pipeline failures onto HTTP statuses. A failed
// reconciliation answers 422 with the full discrepancy report so the
// statement can be reviewed manually.
func (h *StatementHandler) sendPipelineError(c *gin.Context, err error) {
	var recErr *dto.ReconciliationError
	switch {
	case errors.As(err, &recErr):
		h.logger.Error().Err(err).Msg("reconciliation failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        "RECONCILIATION_FAILED",
			"message":      recErr.Error(),
			"summary":      recErr.Summary,
			"verification": recErr.Result,
			"tolerance":    recErr.Tolerance,
		})
	case errors.Is(err, dto.ErrAuthentication):
		h.sendError(c, http.StatusUnauthorized, "statement password missing or rejected", err)
	case errors.Is(err, dto.ErrNoTextExtracted):
		h.sendError(c, http.StatusUnprocessableEntity, "statement contains no extractable text", err)
	default:
		h.sendError(c, http.StatusInternalServerError, "failed to process statement", err)
	}
}

// sendError sends a structured error response
func (h *StatementHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Error().Err(err).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "STATEMENT_PROCESSING_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}

func readAll(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
