package visit

import (
	"net/http"
	"time"

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
	g := api.Group("/visit", auth.RequireRole("patient", "clinician"))
	g.POST("/create", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/date", h.UpdateDate)
	g.PATCH("/:id/consultation", h.SetConsultation)
	g.PATCH("/:id/report-status", h.SetReportStatus)
}

type createRequest struct {
	UserID          string    `json:"userId"`
	CaseID          uuid.UUID `json:"caseId"`
	QuestionnaireID uuid.UUID `json:"questionnaireId"`
}

type createResponse struct {
	VisitID   uuid.UUID `json:"visitId"`
	AddToCase bool      `json:"addToCase"`
	Message   string    `json:"message"`
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
	v, added, err := h.svc.Create(c.Request().Context(), userID, req.CaseID, req.QuestionnaireID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp := createResponse{VisitID: v.ID, AddToCase: added, Message: "visit already exists"}
	status := http.StatusOK
	if added {
		resp.Message = "visit created"
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

	if caseParam := c.QueryParam("case_id"); caseParam != "" {
		caseID, err := uuid.Parse(caseParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid case_id")
		}
		visits, total, err := h.svc.ListByCase(c.Request().Context(), caseID, userID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg))
	}

	visits, total, err := h.svc.ListByUser(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg))
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
	v, err := h.svc.Get(c.Request().Context(), id, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

type dateRequest struct {
	UserID    string    `json:"user_id"`
	VisitDate time.Time `json:"visit_date"`
}

func (h *Handler) UpdateDate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	v, err := h.svc.UpdateDate(c.Request().Context(), id, userID, req.VisitDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

type consultationRequest struct {
	UserID         string `json:"user_id"`
	ConsultationID string `json:"consultation_id"`
}

func (h *Handler) SetConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req consultationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	v, err := h.svc.SetConsultation(c.Request().Context(), id, userID, req.ConsultationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}

type reportStatusRequest struct {
	UserID       string `json:"user_id"`
	HasNewReport bool   `json:"has_new_report"`
}

func (h *Handler) SetReportStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reportStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := auth.EffectiveUserID(c, req.UserID)
	if err != nil {
		return err
	}
	v, err := h.svc.SetReportStatus(c.Request().Context(), id, userID, req.HasNewReport)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, v)
}
