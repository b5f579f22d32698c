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

type RoadmapController struct {
	roadmapService services.RoadmapServiceInterface
}

func NewRoadmapController(roadmapService services.RoadmapServiceInterface) *RoadmapController {
	return &RoadmapController{
		roadmapService: roadmapService,
	}
}

// CreateRoadmap godoc
// @Summary Build a roadmap from a material
// @Description Creates the roadmap and builds its milestones in the background. Progress is pushed on /events.
// @Tags Roadmap
// @Accept json
// @Produce json
// @Param request body request_models.BuildRoadmapRequest true "Material, goal and optional generation config"
// @Success 200 {object} response_models.RoadmapCreatedResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /roadmaps [post]
func (r *RoadmapController) CreateRoadmap(c *gin.Context) {
	var req request_models.BuildRoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "material_id is required")
		return
	}

	roadmapID, err := r.roadmapService.StartBuild(c.Request.Context(), c.GetString(utils.ContextUserIDKey), services.BuildRoadmapInput{
		MaterialID:       req.MaterialID,
		RequestedContent: req.RequestedContent,
		Config:           req.GenerationConfig(),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.RoadmapCreatedResponse{
		RoadmapID: roadmapID,
		Status:    dm.RoadmapStatusBuilding,
	}, "Roadmap build started")
}

// GetRoadmap godoc
// @Summary Get a roadmap with its milestones in order
// @Tags Roadmap
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Success 200 {object} domain_models.Roadmap
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /roadmaps/{roadmapId} [get]
func (r *RoadmapController) GetRoadmap(c *gin.Context) {
	roadmap, err := r.roadmapService.GetRoadmap(c.Request.Context(), c.GetString(utils.ContextUserIDKey), c.Param("roadmapId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, roadmap, "Roadmap fetched successfully")
}
