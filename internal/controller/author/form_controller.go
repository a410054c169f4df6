// Package author exposes the authenticated endpoints used to build forms and
// read what respondents sent back.
package author

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/middleware"
	"github.com/lshigami/formkit/internal/service"
	"github.com/rs/zerolog/log"
)

type FormController struct {
	formService service.FormService
}

func NewFormController(formService service.FormService) *FormController {
	return &FormController{formService: formService}
}

func (c *FormController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/forms", c.CreateForm)
	rg.GET("/forms", c.ListForms)
	rg.GET("/forms/:form_id", c.GetForm)
	rg.GET("/forms/:form_id/complete", c.GetFormComplete)
	rg.PATCH("/forms/:form_id", c.UpdateForm)
	rg.DELETE("/forms/:form_id", c.DeleteForm)
	rg.POST("/forms/:form_id/publish", c.PublishForm)
}

// CreateForm godoc
// @Summary Create a form
// @Description Creates a form owned by the caller together with its default section.
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form body dto.CreateFormRequest true "Form data"
// @Success 201 {object} dto.FormResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /forms [post]
func (c *FormController) CreateForm(ctx *gin.Context) {
	var req dto.CreateFormRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	ownerID, _ := middleware.PrincipalID(ctx)
	form, err := c.formService.CreateForm(ctx.Request.Context(), ownerID, req)
	if err != nil {
		controller.RespondError(ctx, err, "CreateForm")
		return
	}
	ctx.JSON(http.StatusCreated, form)
}

// ListForms godoc
// @Summary List the caller's forms
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.FormResponse
// @Router /forms [get]
func (c *FormController) ListForms(ctx *gin.Context) {
	ownerID, _ := middleware.PrincipalID(ctx)
	forms, err := c.formService.ListForms(ctx.Request.Context(), ownerID)
	if err != nil {
		controller.RespondError(ctx, err, "ListForms")
		return
	}
	ctx.JSON(http.StatusOK, forms)
}

// GetForm godoc
// @Summary Get a form
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {object} dto.FormResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id} [get]
func (c *FormController) GetForm(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	form, err := c.formService.GetForm(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetForm")
		return
	}
	ctx.JSON(http.StatusOK, form)
}

// GetFormComplete godoc
// @Summary Get a form with its sections, questions and options
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {object} dto.FormCompleteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id}/complete [get]
func (c *FormController) GetFormComplete(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	form, err := c.formService.GetFormComplete(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetFormComplete")
		return
	}
	ctx.JSON(http.StatusOK, form)
}

// UpdateForm godoc
// @Summary Update a form's title or description
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Param form body dto.UpdateFormRequest true "Fields to change"
// @Success 200 {object} dto.FormResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id} [patch]
func (c *FormController) UpdateForm(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	var req dto.UpdateFormRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	form, err := c.formService.UpdateForm(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "UpdateForm")
		return
	}
	ctx.JSON(http.StatusOK, form)
}

// DeleteForm godoc
// @Summary Delete a form and everything under it
// @Description Sections, questions, options and images are removed. Stored responses are kept.
// @Tags Forms
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id} [delete]
func (c *FormController) DeleteForm(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	if err := c.formService.DeleteForm(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err, "DeleteForm")
		return
	}
	log.Info().Uint("formID", id).Msg("Form deleted")
	ctx.Status(http.StatusNoContent)
}

// PublishForm godoc
// @Summary Publish a form
// @Description Assigns the public response token. Publishing again returns the same link.
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {object} dto.PublishResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id}/publish [post]
func (c *FormController) PublishForm(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	link, err := c.formService.PublishForm(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "PublishForm")
		return
	}
	ctx.JSON(http.StatusOK, link)
}
