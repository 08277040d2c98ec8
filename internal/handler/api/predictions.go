// Package api exposes the forecast use cases over HTTP.
package api

import (
	"errors"
	"net/http"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionsHandler implements the Echo-based prediction endpoints.
type PredictionsHandler struct {
	logger     *xlogger.Logger
	forecaster *usecase.Forecaster
}

func NewPredictionsHandler(logger *xlogger.Logger, forecaster *usecase.Forecaster) *PredictionsHandler {
	return &PredictionsHandler{logger: logger, forecaster: forecaster}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	g := e.Group("/predictions")
	g.POST("/predict_archive", h.PredictArchive)
	g.POST("/predict_prices", h.PredictPrices)
	g.GET("/predict_today", h.PredictToday)
	g.GET("/get_predictions", h.GetPredictions)
}

// Root is the liveness probe.
func (h *PredictionsHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Stock prediction API is running",
	})
}

// PredictArchive runs inference on an uploaded CSV price archive. The
// response body is the bare horizon map, not the standard envelope.
func (h *PredictionsHandler) PredictArchive(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("multipart field 'file' is required").WithError(err))
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("archive open failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not read uploaded file").WithError(err))
	}
	defer f.Close()

	preds, err := h.forecaster.PredictArchive(c.Request().Context(), f)
	if err != nil {
		return h.predictionError(c, err)
	}
	return c.JSON(http.StatusOK, preds.ResponseMap())
}

// PredictPrices runs inference on raw price columns posted as JSON.
func (h *PredictionsHandler) PredictPrices(c echo.Context) error {
	req := &models.PriceDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	preds, err := h.forecaster.PredictPrices(c.Request().Context(), req)
	if err != nil {
		return h.predictionError(c, err)
	}
	return c.JSON(http.StatusOK, preds.ResponseMap())
}

// PredictToday fetches fresh feed data, predicts, and persists the batch.
func (h *PredictionsHandler) PredictToday(c echo.Context) error {
	preds, err := h.forecaster.PredictToday(c.Request().Context())
	if err != nil {
		return h.predictionError(c, err)
	}
	return c.JSON(http.StatusOK, preds.ResponseMap())
}

// GetPredictions returns every stored prediction batch for the ticker.
// An empty store is a 404, matching clients that poll until data exists.
func (h *PredictionsHandler) GetPredictions(c echo.Context) error {
	records, err := h.forecaster.Predictions(c.Request().Context())
	if err != nil {
		h.logger.Error("select predictions failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load predictions").WithError(err))
	}
	if len(records) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no predictions found for %s", h.forecaster.Ticker()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   records,
	})
}

// predictionError maps domain faults to HTTP statuses. Malformed input
// is the caller's problem; everything else is ours.
func (h *PredictionsHandler) predictionError(c echo.Context, err error) error {
	var schemaErr *models.SchemaError
	var shortErr *models.InsufficientDataError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &shortErr):
		h.logger.Warn("prediction rejected", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		h.logger.Error("prediction failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("prediction failed").WithError(err))
	}
}
