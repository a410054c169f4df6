// Package respondent serves published forms to the people filling them in.
package respondent

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/middleware"
	"github.com/lshigami/formkit/internal/service"
	"github.com/rs/zerolog/log"
)

// maxSubmissionBytes bounds the answer object of one submission.
const maxSubmissionBytes = 1 << 20

type RespondentController struct {
	responseService service.ResponseService
	tokens          *auth.TokenManager
}

func NewRespondentController(responseService service.ResponseService, tokens *auth.TokenManager) *RespondentController {
	return &RespondentController{responseService: responseService, tokens: tokens}
}

func (c *RespondentController) RegisterRoutes(root *gin.RouterGroup) {
	rg := root.Group("/response", middleware.OptionalAuth(c.tokens))
	rg.GET("/:token/", c.GetForm)
	rg.POST("/:token/", c.Submit)
}

// GetForm godoc
// @Summary Load a published form
// @Tags Respondents
// @Produce json
// @Param token path string true "Response token"
// @Success 200 {object} dto.FormCompleteResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Router /response/{token}/ [get]
func (c *RespondentController) GetForm(ctx *gin.Context) {
	form, err := c.responseService.GetFormByToken(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		controller.RespondError(ctx, err, "GetFormByToken")
		return
	}
	ctx.JSON(http.StatusOK, form)
}

// Submit godoc
// @Summary Submit answers to a published form
// @Description The body is a JSON object keyed by question id. Choice answers carry option ids.
// @Description A bearer token is optional; when present the response is attributed to that user.
// @Tags Respondents
// @Accept json
// @Produce json
// @Param token path string true "Response token"
// @Param answers body object true "Answers keyed by question id"
// @Success 201 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse "Body is not a JSON object"
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Router /response/{token}/ [post]
func (c *RespondentController) Submit(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxSubmissionBytes+1))
	if err != nil {
		log.Warn().Err(err).Msg("Submit: failed to read body")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read request body"})
		return
	}
	if len(body) > maxSubmissionBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Message: "Submission too large"})
		return
	}

	var userID *uint
	if id, ok := middleware.PrincipalID(ctx); ok {
		userID = &id
	}
	response, err := c.responseService.SubmitResponse(ctx.Request.Context(), ctx.Param("token"), userID, body)
	if err != nil {
		controller.RespondError(ctx, err, "Submit")
		return
	}
	ctx.JSON(http.StatusCreated, response)
}
