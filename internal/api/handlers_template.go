// handlers_template.go - Carrier template handlers
package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carrier-rates/backend/internal/models"
)

// TemplateHandlerImpl implements the TemplateHandler interface
type TemplateHandlerImpl struct {
	svc            ImportService
	maxUploadBytes int64
}

// NewTemplateHandler creates a new template handler instance
func NewTemplateHandler(svc ImportService, maxUploadBytes int64) TemplateHandler {
	return &TemplateHandlerImpl{svc: svc, maxUploadBytes: maxUploadBytes}
}

// HandleCreateTemplate stores a new template from a JSON body
func (h *TemplateHandlerImpl) HandleCreateTemplate(c echo.Context) error {
	var tmpl models.CarrierRateTemplate
	if err := c.Bind(&tmpl); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	created, err := h.svc.CreateTemplate(c.Request().Context(), &tmpl)
	if err != nil {
		return serviceError(err, "template", "")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleImportTemplateYAML creates a template from a YAML document sent as
// the request body or as a multipart "file"
func (h *TemplateHandlerImpl) HandleImportTemplateYAML(c echo.Context) error {
	data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		return err
	}

	created, err := h.svc.ImportTemplateYAML(c.Request().Context(), bytes.NewReader(data), c.QueryParam("createdBy"))
	if err != nil {
		return serviceError(err, "template", "")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleGetTemplate returns one template
func (h *TemplateHandlerImpl) HandleGetTemplate(c echo.Context) error {
	id := c.Param("id")
	tmpl, err := h.svc.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "template", id)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// HandleListTemplates lists templates, optionally for one carrier
func (h *TemplateHandlerImpl) HandleListTemplates(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	list, err := h.svc.ListTemplates(c.Request().Context(), c.QueryParam("carrierId"), limit)
	if err != nil {
		return serviceError(err, "template", "")
	}
	return c.JSON(http.StatusOK, list)
}

type suggestRequest struct {
	Headers   []string `json:"headers"`
	SampleRow []string `json:"sampleRow"`
	CarrierID string   `json:"carrierId"`
}

func (r *suggestRequest) validate() error {
	if len(r.Headers) == 0 {
		return NewValidationError("headers")
	}
	return nil
}

// HandleSuggestMapping proposes field mappings for a set of headers
func (h *TemplateHandlerImpl) HandleSuggestMapping(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	res, err := h.svc.SuggestMapping(c.Request().Context(), req.Headers, req.SampleRow, req.CarrierID)
	if err != nil {
		return serviceError(err, "suggestion", "")
	}
	return c.JSON(http.StatusOK, res)
}

// Helper functions

// readUpload returns the multipart "file" field when the request is a form
// upload, else the raw body. Both are capped at limit bytes.
func readUpload(c echo.Context, limit int64) ([]byte, error) {
	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, NewValidationError("file")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, NewBadRequestError("failed to open uploaded file", err)
		}
		defer f.Close()
		r = f
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewBadRequestError("failed to read upload", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, &APIError{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    "TOO_LARGE",
			Message: "upload exceeds the size limit",
			Details: strconv.FormatInt(limit, 10) + " bytes allowed",
		}
	}
	if len(data) == 0 {
		return nil, NewValidationError("file")
	}
	return data, nil
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, NewValidationError("limit")
	}
	return n, nil
}
