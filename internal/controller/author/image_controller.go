package author

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/config"
	"github.com/lshigami/formkit/internal/controller"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/service"
)

const imageFormField = "file"

type ImageController struct {
	imageService service.ImageService
	maxBytes     int64
}

func NewImageController(imageService service.ImageService, cfg *config.Config) *ImageController {
	return &ImageController{imageService: imageService, maxBytes: cfg.Storage.MaxImageBytes}
}

// RegisterRoutes mounts the upload on the protected group and the download
// on the public one, since respondents need to see images too.
func (c *ImageController) RegisterRoutes(public, protected *gin.RouterGroup) {
	protected.PUT("/images/:kind/:id", c.PutImage)
	public.GET("/images/:kind/:id", c.GetImage)
}

func parseImageTarget(ctx *gin.Context) (model.ImageKind, uint, bool) {
	kind, ok := model.ParseImageKind(ctx.Param("kind"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Unknown image owner kind", Details: []string{ctx.Param("kind")}})
		return "", 0, false
	}
	id, ok := controller.ParseID(ctx, "id")
	return kind, id, ok
}

// PutImage godoc
// @Summary Upload the image of a form, section, question or option
// @Description Accepts either a raw image body or a multipart upload in the "file" field.
// @Tags Images
// @Accept image/png,image/jpeg,image/gif,image/webp,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Owner kind" Enums(form, section, question, option)
// @Param id path int true "Owner ID"
// @Success 200 {object} dto.ImageResponse
// @Failure 400 {object} dto.ErrorResponse "Not an image or too large"
// @Failure 404 {object} dto.ErrorResponse
// @Router /images/{kind}/{id} [put]
func (c *ImageController) PutImage(ctx *gin.Context) {
	kind, id, ok := parseImageTarget(ctx)
	if !ok {
		return
	}
	data, contentType, err := c.readUpload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read upload", Details: []string{err.Error()}})
		return
	}
	image, err := c.imageService.PutImage(ctx.Request.Context(), kind, id, data, contentType)
	if err != nil {
		controller.RespondError(ctx, err, "PutImage")
		return
	}
	ctx.JSON(http.StatusOK, image)
}

// readUpload reads at most one byte past the limit so oversized uploads are
// rejected by the store rather than silently truncated.
func (c *ImageController) readUpload(ctx *gin.Context) ([]byte, string, error) {
	limit := c.maxBytes + 1
	if c.maxBytes <= 0 {
		limit = 32 << 20
	}
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fh, err := ctx.FormFile(imageFormField)
		if err != nil {
			return nil, "", err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, limit))
		return data, declaredType(fh.Header.Get("Content-Type")), err
	}
	data, err := io.ReadAll(io.LimitReader(ctx.Request.Body, limit))
	return data, declaredType(ctx.ContentType()), err
}

// declaredType drops generic content types so the store sniffs the bytes.
func declaredType(ct string) string {
	switch strings.TrimSpace(ct) {
	case "", "application/octet-stream":
		return ""
	}
	return ct
}

// GetImage godoc
// @Summary Download an entity image
// @Tags Images
// @Produce image/png,image/jpeg,image/gif,image/webp
// @Param kind path string true "Owner kind" Enums(form, section, question, option)
// @Param id path int true "Owner ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse
// @Router /images/{kind}/{id} [get]
func (c *ImageController) GetImage(ctx *gin.Context) {
	kind, id, ok := parseImageTarget(ctx)
	if !ok {
		return
	}
	data, contentType, err := c.imageService.GetImage(ctx.Request.Context(), kind, id)
	if err != nil {
		controller.RespondError(ctx, err, "GetImage")
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Data(http.StatusOK, contentType, data)
}
