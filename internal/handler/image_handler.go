package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/pkg/response"
)

type imageOpener interface {
	OpenImage(filename, token string) (*os.File, error)
}

// ImageHandler serves stored lost-ID photos behind signed links.
type ImageHandler struct {
	images imageOpener
}

// NewImageHandler constructs the handler.
func NewImageHandler(images imageOpener) *ImageHandler {
	return &ImageHandler{images: images}
}

// Serve godoc
// @Summary Lost ID photo
// @Tags Files
// @Produce image/jpeg
// @Produce image/png
// @Param filename path string true "Stored filename"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /uploads/{filename} [get]
func (h *ImageHandler) Serve(c *gin.Context) {
	name := c.Param("filename")
	file, err := h.images.OpenImage(name, c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
