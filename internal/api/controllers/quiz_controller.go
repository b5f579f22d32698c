package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learnez/internal/models/request_models"
	"learnez/internal/models/response_models"
	"learnez/internal/services"
	"learnez/pkg/utils"
)

type QuizController struct {
	quizService services.QuizServiceInterface
}

func NewQuizController(quizService services.QuizServiceInterface) *QuizController {
	return &QuizController{
		quizService: quizService,
	}
}

// BeginAttempt godoc
// @Summary Start an adaptive quiz
// @Description Generates the first question for the material and returns the new attempt id
// @Tags Quiz
// @Accept json
// @Produce json
// @Param request body request_models.BeginQuizRequest true "Material and topic"
// @Success 200 {object} response_models.BeginQuizResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /quiz/begin [post]
func (q *QuizController) BeginAttempt(c *gin.Context) {
	var req request_models.BeginQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "material_id and initial_query are required")
		return
	}

	attemptID, err := q.quizService.BeginAttempt(c.Request.Context(), c.GetString(utils.ContextUserIDKey), req.MaterialID, req.InitialQuery)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.BeginQuizResponse{AttemptID: attemptID}, "Attempt started")
}

// RecordAnswer godoc
// @Summary Answer the current question
// @Tags Quiz
// @Accept json
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Param request body request_models.RecordAnswerRequest true "Answer text or choice key"
// @Success 200 {object} response_models.AnswerResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /quiz/{attemptId}/answer [post]
func (q *QuizController) RecordAnswer(c *gin.Context) {
	attemptID := c.Param("attemptId")
	if attemptID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Attempt ID is required")
		return
	}

	var req request_models.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "answer is required")
		return
	}

	result, err := q.quizService.RecordAnswer(c.Request.Context(), c.GetString(utils.ContextUserIDKey), attemptID, req.Answer)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewAnswerResponse(result), "Answer recorded")
}

// GetAttempt godoc
// @Summary Get an attempt
// @Tags Quiz
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Success 200 {object} response_models.AttemptResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /quiz/{attemptId} [get]
func (q *QuizController) GetAttempt(c *gin.Context) {
	attempt, err := q.quizService.GetAttempt(c.Request.Context(), c.GetString(utils.ContextUserIDKey), c.Param("attemptId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewAttemptResponse(attempt), "Attempt fetched successfully")
}
