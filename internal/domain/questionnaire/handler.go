package questionnaire

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellpath/intake/internal/platform/auth"
	"github.com/wellpath/intake/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/questionnaire", auth.RequireRole("patient", "clinician"))
	g.POST("/initialize", h.Initialize)
	g.GET("/get-most-recent-question", h.MostRecentQuestion)
	g.POST("/record-answer", h.RecordAnswer)
	g.GET("/get-conclusion", h.GetConclusion)
	g.POST("/generate-result", h.GenerateResult)
	g.GET("/sessions", h.ListSessions)
	g.GET("/sessions/:id", h.GetSession)
}

type initializeRequest struct {
	UserID string `json:"user_id"`
}

type initializeResponse struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	FirstQuestion   *Question `json:"first_question"`
}

func (h *Handler) Initialize(c echo.Context) error {
	var req initializeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	session, first, err := h.svc.Initialize(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, initializeResponse{
		QuestionnaireID: session.ID,
		FirstQuestion:   first,
	})
}

type recordAnswerRequest struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	UserID          string    `json:"user_id"`
	QuestionID      string    `json:"question_id"`
	Answer          []string  `json:"answer"`
}

func (h *Handler) RecordAnswer(c echo.Context) error {
	var req recordAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	res, err := h.svc.RecordAnswer(c.Request().Context(), req.QuestionnaireID, userID, req.QuestionID, req.Answer)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) MostRecentQuestion(c echo.Context) error {
	sessionID, userID, err := sessionParams(c)
	if err != nil {
		return err
	}
	q, conclusion, err := h.svc.MostRecentQuestion(c.Request().Context(), sessionID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if conclusion != nil {
		return c.JSON(http.StatusOK, conclusion)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) GetConclusion(c echo.Context) error {
	sessionID, userID, err := sessionParams(c)
	if err != nil {
		return err
	}
	conclusion, err := h.svc.Conclusion(c.Request().Context(), sessionID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, conclusion)
}

type generateResultRequest struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	UserID          string    `json:"user_id"`
}

func (h *Handler) GenerateResult(c echo.Context) error {
	var req generateResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	result, err := h.svc.GenerateResult(c.Request().Context(), req.QuestionnaireID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"result": result,
	})
}

func (h *Handler) ListSessions(c echo.Context) error {
	userID, err := auth.EffectiveUserID(c, c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	sessions, total, err := h.svc.ListSessions(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sessions, total, pg))
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, err := auth.EffectiveUserID(c, c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	session, err := h.svc.GetSession(c.Request().Context(), id, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

func sessionParams(c echo.Context) (uuid.UUID, string, error) {
	sessionID, err := uuid.Parse(c.QueryParam("questionnaire_id"))
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid questionnaire_id")
	}
	userID, err := auth.EffectiveUserID(c, c.QueryParam("user_id"))
	if err != nil {
		return uuid.Nil, "", err
	}
	return sessionID, userID, nil
}
