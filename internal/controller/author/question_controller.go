package author

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/service"
)

type QuestionController struct {
	questionService service.QuestionService
}

func NewQuestionController(questionService service.QuestionService) *QuestionController {
	return &QuestionController{questionService: questionService}
}

func (c *QuestionController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sections/:section_id/questions", c.CreateQuestion)
	rg.POST("/sections/:section_id/questions/:question_id", c.MoveQuestion)
	rg.GET("/questions/:question_id", c.GetQuestion)
	rg.PUT("/questions/:question_id", c.UpdateQuestion)
	rg.DELETE("/questions/:question_id", c.DeleteQuestion)
}

// CreateQuestion godoc
// @Summary Add a question to a section
// @Description Choice questions (multiple_choice, checkboxes, dropdown) take their options inline.
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param section_id path int true "Section ID"
// @Param question body dto.CreateQuestionRequest true "Question data"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /sections/{section_id}/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	sectionID, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	var req dto.CreateQuestionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	question, err := c.questionService.CreateQuestion(ctx.Request.Context(), sectionID, req)
	if err != nil {
		controller.RespondError(ctx, err, "CreateQuestion")
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// GetQuestion godoc
// @Summary Get a question with its options
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/{question_id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	question, err := c.questionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetQuestion")
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// UpdateQuestion godoc
// @Summary Replace a question and reconcile its options
// @Description Options with an id are updated, options without one are inserted, and missing ones are deleted.
// @Description Omitting options leaves them untouched. A stale version is rejected with 409.
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Param question body dto.UpdateQuestionRequest true "Question data"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Failure 422 {object} dto.ErrorResponse "Option belongs to another question"
// @Router /questions/{question_id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.UpdateQuestionRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	question, err := c.questionService.UpdateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "UpdateQuestion")
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// MoveQuestion godoc
// @Summary Move a question into a section
// @Description The question keeps its options and is appended after the section's last question.
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param section_id path int true "Target section ID"
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Concurrent update"
// @Router /sections/{section_id}/questions/{question_id} [post]
func (c *QuestionController) MoveQuestion(ctx *gin.Context) {
	sectionID, ok := controller.ParseID(ctx, "section_id")
	if !ok {
		return
	}
	id, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	question, err := c.questionService.MoveQuestion(ctx.Request.Context(), id, sectionID)
	if err != nil {
		controller.RespondError(ctx, err, "MoveQuestion")
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary Delete a question with its options
// @Tags Questions
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /questions/{question_id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err, "DeleteQuestion")
		return
	}
	ctx.Status(http.StatusNoContent)
}
