package author

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/service"
)

type SectionController struct {
	sectionService service.SectionService
}

func NewSectionController(sectionService service.SectionService) *SectionController {
	return &SectionController{sectionService: sectionService}
}

func (c *SectionController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/forms/:form_id/sections", c.CreateSection)
	rg.GET("/forms/:form_id/sections", c.ListSections)
	rg.GET("/sections/:section_id", c.GetSection)
	rg.GET("/sections/:section_id/complete", c.GetSectionComplete)
	rg.PATCH("/sections/:section_id", c.UpdateSection)
	rg.DELETE("/sections/:section_id", c.DeleteSection)
}

// CreateSection godoc
// @Summary Add a section to a form
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Param section body dto.CreateSectionRequest true "Section data"
// @Success 201 {object} dto.SectionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id}/sections [post]
func (c *SectionController) CreateSection(ctx *gin.Context) {
	formID, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	var req dto.CreateSectionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	section, err := c.sectionService.CreateSection(ctx.Request.Context(), formID, req)
	if err != nil {
		controller.RespondError(ctx, err, "CreateSection")
		return
	}
	ctx.JSON(http.StatusCreated, section)
}

// ListSections godoc
// @Summary List the sections of a form
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param form_id path int true "Form ID"
// @Success 200 {array} dto.SectionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /forms/{form_id}/sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	formID, ok := controller.ParseID(ctx, "form_id")
	if !ok {
		return
	}
	sections, err := c.sectionService.ListSections(ctx.Request.Context(), formID)
	if err != nil {
		controller.RespondError(ctx, err, "ListSections")
		return
	}
	ctx.JSON(http.StatusOK, sections)
}

// GetSection godoc
// @Summary Get a section
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param section_id path int true "Section ID"
// @Success 200 {object} dto.SectionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{section_id} [get]
func (c *SectionController) GetSection(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	section, err := c.sectionService.GetSection(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetSection")
		return
	}
	ctx.JSON(http.StatusOK, section)
}

// GetSectionComplete godoc
// @Summary Get a section with its questions and options
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param section_id path int true "Section ID"
// @Success 200 {object} dto.SectionCompleteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{section_id}/complete [get]
func (c *SectionController) GetSectionComplete(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	section, err := c.sectionService.GetSectionComplete(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetSectionComplete")
		return
	}
	ctx.JSON(http.StatusOK, section)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param section_id path int true "Section ID"
// @Param section body dto.UpdateSectionRequest true "Fields to change"
// @Success 200 {object} dto.SectionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{section_id} [patch]
func (c *SectionController) UpdateSection(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	var req dto.UpdateSectionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	section, err := c.sectionService.UpdateSection(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "UpdateSection")
		return
	}
	ctx.JSON(http.StatusOK, section)
}

// DeleteSection godoc
// @Summary Delete a section with its questions and options
// @Tags Sections
// @Security BearerAuth
// @Param section_id path int true "Section ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{section_id} [delete]
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	if err := c.sectionService.DeleteSection(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err, "DeleteSection")
		return
	}
	ctx.Status(http.StatusNoContent)
}
