package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/auth"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/middleware"
	"github.com/lshigami/formkit/internal/service"
	"github.com/rs/zerolog/log"
)

type AccountController struct {
	userService service.UserService
	tokens      *auth.TokenManager
}

func NewAccountController(userService service.UserService, tokens *auth.TokenManager) *AccountController {
	return &AccountController{userService: userService, tokens: tokens}
}

func (c *AccountController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/users", c.Register)
	api.POST("/auth/login", c.Login)

	protected := api.Group("", middleware.RequireAuth(c.tokens))
	protected.GET("/me", c.Me)
	protected.GET("/users", c.ListUsers)
	protected.GET("/users/:user_id", c.GetUser)
	protected.GET("/usernames/:username", c.GetUserByUsername)
}

// Register godoc
// @Summary Register a new user
// @Tags Accounts
// @Accept json
// @Produce json
// @Param user body dto.RegisterUserRequest true "User to create"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Router /users [post]
func (c *AccountController) Register(ctx *gin.Context) {
	var req dto.RegisterUserRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.RegisterUser(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err, "Register")
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Username and password"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AccountController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !controller.BindJSON(ctx, &req) {
		return
	}
	token, err := c.userService.Authenticate(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err, "Login")
		return
	}
	ctx.JSON(http.StatusOK, token)
}

// Me godoc
// @Summary Current user
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /me [get]
func (c *AccountController) Me(ctx *gin.Context) {
	id, _ := middleware.PrincipalID(ctx)
	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "Me")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Router /users [get]
func (c *AccountController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err, "ListUsers")
		return
	}
	log.Debug().Int("count", len(users)).Msg("Listed users")
	ctx.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get a user by id
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{user_id} [get]
func (c *AccountController) GetUser(ctx *gin.Context) {
	id, ok := controller.ParseID(ctx, "user_id")
	if !ok {
		return
	}
	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err, "GetUser")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// GetUserByUsername godoc
// @Summary Get a user by username
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /usernames/{username} [get]
func (c *AccountController) GetUserByUsername(ctx *gin.Context) {
	user, err := c.userService.GetUserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		controller.RespondError(ctx, err, "GetUserByUsername")
		return
	}
	ctx.JSON(http.StatusOK, user)
}
