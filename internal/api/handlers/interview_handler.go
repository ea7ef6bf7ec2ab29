package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockinterview/internal/services"
	"github.com/yoockh/mockinterview/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type CreateInterviewRequest struct {
	JobTitle       string  `json:"job_title" binding:"required"`
	JobDescription string  `json:"job_description" binding:"required"`
	Company        *string `json:"company"`
}

type RespondRequest struct {
	QuestionID   uint   `json:"question_id" binding:"required"`
	ResponseText string `json:"response_text" binding:"required"`
}

func (h *InterviewHandler) Create(c *gin.Context) {
	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
		return
	}

	iv, err := h.svc.Create(c.Request.Context(), identity(c), services.CreateInterviewInput{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Company:        req.Company,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := interviewID(c, "InterviewHandler.Get")
	if !ok {
		return
	}
	iv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Start(c *gin.Context) {
	id, ok := interviewID(c, "InterviewHandler.Start")
	if !ok {
		return
	}
	out, err := h.svc.Start(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *InterviewHandler) Respond(c *gin.Context) {
	const op = "InterviewHandler.Respond"

	id, ok := interviewID(c, op)
	if !ok {
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	out, err := h.svc.Respond(c.Request.Context(), id, services.RespondInput{
		QuestionID:   req.QuestionID,
		ResponseText: req.ResponseText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *InterviewHandler) Feedback(c *gin.Context) {
	id, ok := interviewID(c, "InterviewHandler.Feedback")
	if !ok {
		return
	}
	out, err := h.svc.Feedback(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *InterviewHandler) History(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
