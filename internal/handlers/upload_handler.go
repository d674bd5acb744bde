package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/middleware"
	"github.com/developia-II/marketplace-backend/internal/services/supplier"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10MB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadHandler struct {
	base
	suppliers supplier.Service
	uploader  utils.ImageUploader
}

func NewUploadHandler(suppliers supplier.Service, uploader utils.ImageUploader, timeout time.Duration) *UploadHandler {
	return &UploadHandler{base: newBase(timeout), suppliers: suppliers, uploader: uploader}
}

// UploadImage stores a product image for an approved supplier and returns its URL.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Image uploads are not configured"))
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	// Same gate as product writes.
	s, err := h.suppliers.GetForUser(ctx, middleware.Auth(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !s.CanWrite() {
		respondError(c, domain.NewForbiddenError(s.WriteDeniedReason()))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large (Max 10MB)"))
		return
	}
	defer file.Close()

	// Sniff the real type from the magic number, not the client's header.
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	fallbackExt, ok := allowedImageTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = fallbackExt
	}
	safeFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	imageURL, err := h.uploader.Upload(ctx, file, safeFilename)
	if err != nil {
		logrus.WithError(err).WithField("supplierId", s.ID.Hex()).Error("Image upload failed")
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Image upload failed"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"url":  imageURL,
		"size": header.Size,
		"type": contentType,
	}))
}
