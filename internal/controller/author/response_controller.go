package author

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/service"
)

type ResponseController struct {
	responseService service.ResponseService
	exportService   service.ExportService
}

func NewResponseController(responseService service.ResponseService, exportService service.ExportService) *ResponseController {
	return &ResponseController{responseService: responseService, exportService: exportService}
}

func (c *ResponseController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/forms/:form_id/responses", c.ListResponses)
	rg.GET("/forms/:form_id/responses/count", c.CountResponses)
	rg.GET("/forms/:form_id/export.csv", c.ExportCSV)
	rg.GET("/responses/:response_id", c.GetResponse)
}

// ListResponses godoc
// @Summary List the stored responses of a form
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {array} dto.SubmissionResponse
// @Router /forms/{form_id}/responses [get]
func (c *ResponseController) ListResponses(ctx *gin.Context) {
	formID, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	responses, err := c.responseService.ListResponses(ctx.Request.Context(), formID)
	if err != nil {
		controller.RespondError(ctx, err, "ListResponses")
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// CountResponses godoc
// @Summary Count the stored responses of a form
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {object} dto.CountResponse
// @Router /forms/{form_id}/responses/count [get]
func (c *ResponseController) CountResponses(ctx *gin.Context) {
	formID, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	n, err := c.responseService.CountResponses(ctx.Request.Context(), formID)
	if err != nil {
		controller.RespondError(ctx, err, "CountResponses")
		return
	}
	ctx.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// GetResponse godoc
// @Summary Get one stored response
// @Tags Responses
// @Produce json
// @Security BearerAuth
// @Param response_id path int true "Response ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /responses/{response_id} [get]
func (c *ResponseController) GetResponse(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "response_id")
	if !ok {
		return
	}
	response, err := c.responseService.GetResponse(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetResponse")
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// ExportCSV godoc
// @Summary Download the responses of a form as CSV
// @Description One row per answered question, with choice answers resolved to option text.
// @Tags Responses
// @Produce text/csv
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id}/export.csv [get]
func (c *ResponseController) ExportCSV(ctx *gin.Context) {
	formID, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	export, err := c.exportService.Prepare(ctx.Request.Context(), formID)
	if err != nil {
		controller.RespondError(ctx, err, "ExportCSV")
		return
	}

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	ctx.Status(http.StatusOK)

	// the status line is already sent, so a failure can only cut the body short
	if _, err := export.Write(ctx.Request.Context(), ctx.Writer); err != nil {
		_ = ctx.Error(err)
	}
}
