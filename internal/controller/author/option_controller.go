package author

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/service"
)

type OptionController struct {
	optionService service.OptionService
}

func NewOptionController(optionService service.OptionService) *OptionController {
	return &OptionController{optionService: optionService}
}

func (c *OptionController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/questions/:question_id/options", c.CreateOption)
	rg.GET("/questions/:question_id/options", c.ListOptions)
	rg.GET("/options/:option_id", c.GetOption)
	rg.PUT("/options/:option_id", c.UpdateOption)
	rg.DELETE("/options/:option_id", c.DeleteOption)
}

// CreateOption godoc
// @Summary Add an option to a choice question
// @Tags Options
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Param option body dto.CreateOptionRequest true "Option data"
// @Success 201 {object} dto.OptionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Question type has no options"
// @Router /questions/{question_id}/options [post]
func (c *OptionController) CreateOption(ctx *gin.Context) {
	questionID, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.CreateOptionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	option, err := c.optionService.CreateOption(ctx.Request.Context(), questionID, req)
	if err != nil {
		controller.RespondError(ctx, err, "CreateOption")
		return
	}
	ctx.JSON(http.StatusCreated, option)
}

// ListOptions godoc
// @Summary List the options of a question
// @Tags Options
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Success 200 {array} dto.OptionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/{question_id}/options [get]
func (c *OptionController) ListOptions(ctx *gin.Context) {
	questionID, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	options, err := c.optionService.ListOptions(ctx.Request.Context(), questionID)
	if err != nil {
		controller.RespondError(ctx, err, "ListOptions")
		return
	}
	ctx.JSON(http.StatusOK, options)
}

// GetOption godoc
// @Summary Get an option
// @Tags Options
// @Produce json
// @Security BearerAuth
// @Param option_id path int true "Option ID"
// @Success 200 {object} dto.OptionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /options/{option_id} [get]
func (c *OptionController) GetOption(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "option_id")
	if !ok {
		return
	}
	option, err := c.optionService.GetOption(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetOption")
		return
	}
	ctx.JSON(http.StatusOK, option)
}

// UpdateOption godoc
// @Summary Change an option's text
// @Tags Options
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param option_id path int true "Option ID"
// @Param option body dto.UpdateOptionRequest true "Option data"
// @Success 200 {object} dto.OptionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /options/{option_id} [put]
func (c *OptionController) UpdateOption(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "option_id")
	if !ok {
		return
	}
	var req dto.UpdateOptionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	option, err := c.optionService.UpdateOption(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "UpdateOption")
		return
	}
	ctx.JSON(http.StatusOK, option)
}

// DeleteOption godoc
// @Summary Delete an option
// @Description Answers that referenced it are rendered as a deleted option on export.
// @Tags Options
// @Security BearerAuth
// @Param option_id path int true "Option ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /options/{option_id} [delete]
func (c *OptionController) DeleteOption(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "option_id")
	if !ok {
		return
	}
	if err := c.optionService.DeleteOption(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err, "DeleteOption")
		return
	}
	ctx.Status(http.StatusNoContent)
}
