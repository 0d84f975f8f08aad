// internal/api/handlers/dataset_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/demandcast/internal/service"
)

type DatasetHandler struct {
	service *service.ForecastService
}

func NewDatasetHandler(service *service.ForecastService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// Upload registers one or more CSV files for analysis
func (h *DatasetHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	inputs := make([]service.UploadInput, 0, len(files))
	for _, file := range files {
		inputs = append(inputs, service.UploadInput{
			Filename: file.Filename,
			Open: func() (io.ReadCloser, error) {
				return file.Open()
			},
		})
	}

	datasets, err := h.service.AddDatasets(c.Request.Context(), inputs)
	if err != nil {
		log.Error().Err(err).Msg("failed to register uploaded datasets")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"datasets": datasets})
}

// List returns all registered datasets
func (h *DatasetHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": h.service.Datasets()})
}

// Get returns the metadata for one dataset
func (h *DatasetHandler) Get(c *gin.Context) {
	dataset, err := h.service.Dataset(c.Param("id"))
	if err != nil {
		respondDatasetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataset)
}

// Columns returns the detected column-role mapping plus any roles that could
// not be resolved or were ambiguous
func (h *DatasetHandler) Columns(c *gin.Context) {
	resolution, err := h.service.Columns(c.Param("id"))
	if err != nil {
		respondDatasetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mapping":   resolution.Mapping,
		"missing":   resolution.Missing,
		"ambiguous": resolution.Ambiguous,
		"resolved":  resolution.OK(),
	})
}

// Delete removes a dataset from the session
func (h *DatasetHandler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondDatasetError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondDatasetError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrDatasetNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return
	}
	log.Error().Err(err).Msg("dataset request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
