package handlers

import (
	"errors"
	"io"
	"net/http"

	"leafscan/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errMissingFile    = "missing file upload"
	errReadFile       = "failed to read uploaded file"
	errClassifyImage  = "failed to classify image"
	errProcessImage   = "failed to process image"
	errLoadHistory    = "failed to load prediction history"
	errDeleteRecord   = "failed to delete prediction"
	errRecordNotFound = "prediction not found or you don't have permission to delete it"

	msgDeleted = "Prediction deleted successfully"
)

// readImageFile pulls the multipart "file" field into memory. On failure it
// writes the error response and returns ok=false.
func (h *Handler) readImageFile(c *gin.Context) (filename, contentType string, data []byte, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFile})
		return "", "", nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errReadFile, "predict_open_upload_failed", err)
		return "", "", nil, false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errReadFile, "predict_read_upload_failed", err)
		return "", "", nil, false
	}
	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, true
}

// @Summary      Classify an image without an account
// @Description  The result is returned but not persisted.
// @Tags         predictions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image to classify"
// @Success      200   {object}  map[string]string  "filename, disease"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /predict/anonymous [post]
func (h *Handler) predictAnonymous(c *gin.Context) {
	filename, _, data, ok := h.readImageFile(c)
	if !ok {
		return
	}

	disease, err := h.services.Classify(c.Request.Context(), data)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errClassifyImage, "predict_classify_failed", err, "filename", filename)
		return
	}

	c.JSON(http.StatusOK, gin.H{"filename": filename, "disease": disease})
}

// @Summary      Classify an image and store the result
// @Tags         predictions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image to classify"
// @Success      200   {object}  leafscan.Prediction
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /predict [post]
// @Security     BearerAuth
func (h *Handler) predict(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		h.abortUnauthorized(c, "could not validate credentials")
		return
	}

	filename, contentType, data, ok := h.readImageFile(c)
	if !ok {
		return
	}

	rec, err := h.services.ClassifyAndStore(c.Request.Context(), u, filename, contentType, data)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errProcessImage, "predict_store_failed", err, "filename", filename, "user", u.Username)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// @Summary      List the caller's prediction history
// @Tags         predictions
// @Produce      json
// @Success      200  {array}   leafscan.Prediction
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /predictions/history [get]
// @Security     BearerAuth
func (h *Handler) history(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		h.abortUnauthorized(c, "could not validate credentials")
		return
	}

	records, err := h.services.History(c.Request.Context(), u.ID.Hex())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadHistory, "history_list_failed", err, "user", u.Username)
		return
	}

	c.JSON(http.StatusOK, records)
}

// @Summary      Delete a prediction record
// @Description  Removes the record and its stored image if the caller owns it.
// @Tags         predictions
// @Produce      json
// @Param        id   path      string  true  "Prediction id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /predictions/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deletePrediction(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		h.abortUnauthorized(c, "could not validate credentials")
		return
	}

	err := h.services.Delete(c.Request.Context(), c.Param("id"), u.ID.Hex())
	if err != nil {
		if errors.Is(err, service.ErrPredictionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errRecordNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteRecord, "prediction_delete_failed", err, "id", c.Param("id"), "user", u.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}
