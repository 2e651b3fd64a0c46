package document

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
	l := zap.L().Named("document.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("document request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Upload(c *gin.Context) {
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

	resp, err := h.service.Upload(
		c.Request.Context(),
		companyID,
		actorID,
		c.PostForm("employee_id"),
		c.PostForm("category"),
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

func (h *Handler) GetByEmployee(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.GetByEmployee(c.Request.Context(), companyID, c.Query("employee_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	companyID := c.GetString("company_id")

	if err := h.service.Delete(c.Request.Context(), companyID, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) DownloadURL(c *gin.Context) {
	companyID := c.GetString("company_id")

	url, err := h.service.DownloadURL(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url}, nil)
}
