package request_models

type BeginQuizRequest struct {
	MaterialID   string `json:"material_id" binding:"required"`
	InitialQuery string `json:"initial_query" binding:"required"`
}

type RecordAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}
