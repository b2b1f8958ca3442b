// handlers_import.go - Validate, preview and commit handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carrier-rates/backend/internal/importer"
)

// ImportHandlerImpl implements the ImportHandler interface
type ImportHandlerImpl struct {
	svc            ImportService
	maxUploadBytes int64
}

// NewImportHandler creates a new import handler instance
func NewImportHandler(svc ImportService, maxUploadBytes int64) ImportHandler {
	return &ImportHandlerImpl{svc: svc, maxUploadBytes: maxUploadBytes}
}

type importRequest struct {
	Rows      [][]string `json:"rows"`
	Name      string     `json:"name"`
	CreatedBy string     `json:"createdBy"`
}

// readRequest accepts either a JSON body of rows or a multipart "file"
// decoded with the template's delimiter and encoding.
func (h *ImportHandlerImpl) readRequest(c echo.Context, templateID string) (*importRequest, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		data, err := readUpload(c, h.maxUploadBytes)
		if err != nil {
			return nil, err
		}
		rows, err := h.svc.DecodeFile(c.Request().Context(), templateID, data)
		if err != nil {
			return nil, serviceError(err, "file", templateID)
		}
		return &importRequest{
			Rows:      rows,
			Name:      c.FormValue("name"),
			CreatedBy: c.FormValue("createdBy"),
		}, nil
	}

	var req importRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewBadRequestError("invalid JSON body", err)
	}
	if req.Rows == nil {
		return nil, NewValidationError("rows")
	}
	return &req, nil
}

// HandleValidate checks a file against a template. Validation failures are
// reported in the body with status 200.
func (h *ImportHandlerImpl) HandleValidate(c echo.Context) error {
	id := c.Param("templateId")
	req, err := h.readRequest(c, id)
	if err != nil {
		return err
	}

	res, err := h.svc.ValidateImport(c.Request().Context(), id, req.Rows)
	if err != nil {
		return serviceError(err, "import", id)
	}
	return c.JSON(http.StatusOK, res)
}

// HandlePreview processes the first rows of a file without saving them
func (h *ImportHandlerImpl) HandlePreview(c echo.Context) error {
	id := c.Param("templateId")
	req, err := h.readRequest(c, id)
	if err != nil {
		return err
	}

	res, err := h.svc.PreviewImport(c.Request().Context(), id, req.Rows)
	if err != nil {
		return serviceError(err, "import", id)
	}
	return c.JSON(http.StatusOK, res)
}

// HandleCommit imports a file as a new rate card
func (h *ImportHandlerImpl) HandleCommit(c echo.Context) error {
	id := c.Param("templateId")
	req, err := h.readRequest(c, id)
	if err != nil {
		return err
	}

	res, err := h.svc.CommitImport(c.Request().Context(), id, req.Rows, importer.CommitOptions{
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return serviceError(err, "import", id)
	}
	return c.JSON(http.StatusCreated, res)
}
