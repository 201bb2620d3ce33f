package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/middleware"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/imagesync"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/preview"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
	"github.com/ShahHussain182/ecommerce-admin-gateway/pkg/view"
)

// maxSelectBytes caps one multipart selection request.
const maxSelectBytes = 25 << 20

// ImagesHandler drives per-product image edit sessions.
type ImagesHandler struct {
	registry *imagesync.Registry
	log      *slog.Logger
}

func NewImagesHandler(registry *imagesync.Registry, log *slog.Logger) *ImagesHandler {
	return &ImagesHandler{registry: registry, log: log}
}

// OpenSession mounts the image manager for a product.
func (h *ImagesHandler) OpenSession(c *gin.Context) {
	sess, err := h.registry.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	items, status := sess.Snapshot()
	c.JSON(http.StatusCreated, view.NewImageGrid(items, status))
}

// CloseSession is the teardown path: spool handles release, any
// awaiting reconciler goes quiet.
func (h *ImagesHandler) CloseSession(c *gin.Context) {
	h.registry.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *ImagesHandler) List(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	items, status := sess.Snapshot()
	c.JSON(http.StatusOK, view.NewImageGrid(items, status))
}

// Select spools newly chosen files into the preview grid.
func (h *ImagesHandler) Select(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSelectBytes)
	form, err := c.MultipartForm()
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Could not read uploaded files.", nil))
		return
	}
	fhs := form.File["images"]
	if len(fhs) == 0 {
		middleware.Fail(c, apperr.InvalidErr("Please select at least one image.", nil))
		return
	}

	files := make([]preview.File, 0, len(fhs))
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		opened = append(opened, f)
		files = append(files, preview.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	if err := sess.SelectFiles(c.Request.Context(), files); err != nil {
		middleware.Fail(c, err)
		return
	}

	items, status := sess.Snapshot()
	c.JSON(http.StatusOK, view.NewImageGrid(items, status))
}

func (h *ImagesHandler) RemoveLocal(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := sess.RemoveLocal(c.Request.Context(), c.Param("itemID")); err != nil {
		middleware.Fail(c, err)
		return
	}
	items, status := sess.Snapshot()
	c.JSON(http.StatusOK, view.NewImageGrid(items, status))
}

// Upload pushes the pending local files upstream and starts a
// completion cycle.
func (h *ImagesHandler) Upload(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	msg, err := sess.UploadBatch(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	items, status := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"grid":    view.NewImageGrid(items, status),
	})
}

type deleteImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

func (h *ImagesHandler) DeleteRemote(c *gin.Context) {
	sess, err := h.registry.Get(c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Image deletion URL missing.", nil))
		return
	}

	msg, err := sess.DeleteImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	items, status := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"grid":    view.NewImageGrid(items, status),
	})
}
