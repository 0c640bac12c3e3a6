package handlers

import (
	"net/http"

	"github.com/ASHISH26940/asmr-studio-api/pkg/middleware"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// GetPredictionStatus relays a prediction's status. Signed-in owners also get
// their video row updated.
func (h *Handlers) GetPredictionStatus(c *gin.Context) {
	st, err := h.Videos.Status(c.Request.Context(), middleware.OptionalUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, "GetPredictionStatus", err)
		return
	}
	utils.ResponseWithSuccess(c, http.StatusOK, "Prediction status", st)
}
