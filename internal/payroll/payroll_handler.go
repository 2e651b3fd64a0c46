package payroll

import (
	"net/http"

	"peopledesk/internal/shared/apperror"
	"peopledesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payroll request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) CreateCycle(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	resp, err := h.service.CreateCycle(c.Request.Context(), companyID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) UpdateCycleStatus(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req UpdateCycleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	resp, err := h.service.UpdateCycleStatus(c.Request.Context(), companyID, c.Param("id"), req.Status)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetCycles(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetCycles(c.Request.Context(), companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetCycle(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetCycle(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RequestPayslips(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("account_id")

	if err := h.service.RequestPayslips(c.Request.Context(), companyID, actorID, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"requested": true}, nil)
}

func (h *Handler) UploadDocument(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("account_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "file is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "file could not be read", nil)
		return
	}
	defer f.Close()

	var employeeID *string
	if v := c.PostForm("employee_id"); v != "" {
		employeeID = &v
	}

	resp, err := h.service.UploadDocument(
		c.Request.Context(),
		companyID,
		actorID,
		c.Param("id"),
		employeeID,
		fileHeader.Filename,
		f,
		c.PostForm("visibility"),
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetDocuments(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetDocuments(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	companyID := c.GetString("company_id")

	if err := h.service.DeleteDocument(c.Request.Context(), companyID, c.Param("docId")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) DocumentURL(c *gin.Context) {
	companyID := c.GetString("company_id")

	url, err := h.service.DocumentURL(c.Request.Context(), companyID, c.Param("docId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url}, nil)
}
