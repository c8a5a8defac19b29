package controllers

import (
	"errors"
	"net/http"

	"nailsalon-backend/services/booking"
	"nailsalon-backend/services/storage"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxReferenceImages = 5

type UploadController struct {
	store  storage.ImageStore
	logger *zap.Logger
}

func NewUploadController(store storage.ImageStore, logger *zap.Logger) *UploadController {
	return &UploadController{store: store, logger: logger}
}

// UploadReferenceImages stores the multipart "images" files and returns
// their ids for use as a custom nail style.
func (u *UploadController) UploadReferenceImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Expected a multipart form")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "At least one image is required")
		return
	}
	if len(files) > maxReferenceImages {
		utils.RespondWithError(c, http.StatusBadRequest, "Too many images")
		return
	}

	for _, fh := range files {
		if !utils.ValidateImage(fh.Header.Get("Content-Type"), fh.Size) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid image: "+fh.Filename)
			return
		}
	}

	refs := make([]storage.ImageRef, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to read "+fh.Filename)
			return
		}
		ref, err := u.store.Upload(c.Request.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			if errors.Is(err, storage.ErrNotConfigured) {
				utils.RespondWithError(c, http.StatusServiceUnavailable, "Image uploads are not available")
				return
			}
			u.logger.Error("image upload failed", zap.String("filename", fh.Filename), zap.Error(err))
			respondWithEngineError(c, booking.Validation("image upload failed", err))
			return
		}
		refs = append(refs, ref)
	}

	c.JSON(http.StatusCreated, gin.H{"files": refs})
}
