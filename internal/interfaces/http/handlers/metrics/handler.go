// Package metrics serves the wait-time read API.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"triage/internal/application/triage/dto"
	vo "triage/internal/domain/triage/valueobjects"
	apperrors "triage/internal/shared/errors"
	"triage/internal/shared/logger"
	"triage/internal/shared/utils"
)

const invalidTipoMessage = "tipo inválido (use 0=Normal,1=Idoso,2=Gestante,3=Emergência)"

// WaitTimeReader is the part of the wait-time estimator the handler reads from.
type WaitTimeReader interface {
	CachedAggregate(ctx context.Context, unit string) ([]byte, error)
	CachedMinutes(ctx context.Context, unit string, class vo.PriorityClass) (*dto.CachedEstimate, error)
	EstimateForTicketNumber(ctx context.Context, unit string, class vo.PriorityClass, rawNumber int64) (*dto.QueueEstimate, error)
	EstimateForPatient(ctx context.Context, unit string, patientID int64) (*dto.QueueEstimate, error)
}

type Handler struct {
	reader WaitTimeReader
	logger logger.Interface
}

func NewHandler(reader WaitTimeReader, log logger.Interface) *Handler {
	return &Handler{
		reader: reader,
		logger: log,
	}
}

// GetUnitAggregate handles GET /api/metrics/tempo-espera/:unidade
func (h *Handler) GetUnitAggregate(c *gin.Context) {
	data, err := h.reader.CachedAggregate(c.Request.Context(), c.Param("unidade"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.RawJSONResponse(c, http.StatusOK, data)
}

// GetWaitTime handles GET /api/metrics/tempo-espera
//
// With codSus the estimate is for the patient's earliest active ticket. With
// senha it is for a ticket of class tipo holding that number. Otherwise the
// cached minutes of class tipo are returned.
func (h *Handler) GetWaitTime(c *gin.Context) {
	ctx := c.Request.Context()
	unit := c.Query("unidade")

	if raw, ok := c.GetQuery("codSus"); ok {
		patientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("codSus inválido", raw))
			return
		}
		estimate, err := h.reader.EstimateForPatient(ctx, unit, patientID)
		if err != nil {
			h.respondError(c, err, "unit", unit, "cod_sus", patientID)
			return
		}
		c.JSON(http.StatusOK, estimate)
		return
	}

	class, ok := parseTipo(c)
	if !ok {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError(invalidTipoMessage))
		return
	}

	if raw, ok := c.GetQuery("senha"); ok {
		number, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("senha inválida", raw))
			return
		}
		estimate, err := h.reader.EstimateForTicketNumber(ctx, unit, class, number)
		if err != nil {
			h.respondError(c, err, "unit", unit, "senha", number)
			return
		}
		c.JSON(http.StatusOK, estimate)
		return
	}

	cached, err := h.reader.CachedMinutes(ctx, unit, class)
	if err != nil {
		h.respondError(c, err, "unit", unit, "tipo", class.Code())
		return
	}
	c.JSON(http.StatusOK, cached)
}

func (h *Handler) respondError(c *gin.Context, err error, keysAndValues ...any) {
	if status := utils.StatusOf(err); status >= http.StatusInternalServerError {
		h.logger.Errorw("wait-time query failed", append(keysAndValues, "error", err)...)
	}
	utils.ErrorResponseWithError(c, err)
}

func parseTipo(c *gin.Context) (vo.PriorityClass, bool) {
	raw, ok := c.GetQuery("tipo")
	if !ok {
		return 0, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	class, err := vo.ParsePriorityClass(code)
	if err != nil {
		return 0, false
	}
	return class, true
}
