package cases

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
	g := api.Group("/cases", auth.RequireRole("patient", "clinician"))
	g.POST("/create", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.PATCH("/:id/title", h.Rename)
}

type createRequest struct {
	UserID          string    `json:"userId"`
	QuestionnaireID uuid.UUID `json:"questionnaireId"`
}

type createResponse struct {
	CaseID  uuid.UUID `json:"caseId"`
	Message string    `json:"message"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	created, isNew, err := h.svc.Create(c.Request().Context(), userID, req.QuestionnaireID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp := createResponse{CaseID: created.ID, Message: "case already exists"}
	status := http.StatusOK
	if isNew {
		resp.Message = "case created"
		status = http.StatusCreated
	}
	return c.JSON(status, resp)
}

func (h *Handler) List(c echo.Context) error {
	userID, err := auth.EffectiveUserID(c, c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	result, total, err := h.svc.List(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(result, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, err := auth.EffectiveUserID(c, c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	found, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, found)
}

type statusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	updated, err := h.svc.UpdateStatus(c.Request().Context(), id, userID, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

type renameRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

func (h *Handler) Rename(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	updated, err := h.svc.Rename(c.Request().Context(), id, userID, req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}
