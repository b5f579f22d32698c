package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dm "learnez/internal/models/domain_models"
	"learnez/internal/models/request_models"
	"learnez/internal/models/response_models"
	"learnez/internal/services"
	"learnez/pkg/utils"
)

type MaterialController struct {
	retriever services.ContentRetrieverInterface
}

func NewMaterialController(retriever services.ContentRetrieverInterface) *MaterialController {
	return &MaterialController{
		retriever: retriever,
	}
}

// GetGroundingData godoc
// @Summary Search a material for passages relevant to a query
// @Tags Material
// @Produce json
// @Param materialId path string true "Material ID"
// @Param q query string true "Search text"
// @Param limit query int false "Max passages" default(5) minimum(1) maximum(20)
// @Success 200 {object} response_models.GroundingResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /materials/{materialId}/grounding [get]
func (m *MaterialController) GetGroundingData(c *gin.Context) {
	materialID := c.Param("materialId")

	var query request_models.GroundingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "q is required")
		return
	}
	if query.Limit < 0 || query.Limit > services.MaxRetrievalLimit {
		utils.RespondError(c, http.StatusBadRequest, "Invalid limit (must be 1-20)")
		return
	}

	passages, err := m.retriever.Retrieve(c.Request.Context(), materialID, query.Query, query.Limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.GroundingResponse{
		MaterialID: materialID,
		Collection: dm.MaterialCollection(materialID),
		Passages:   passages,
	}, "Grounding data fetched successfully")
}
