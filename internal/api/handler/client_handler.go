package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/censudex/clients-service/internal/api/metrics"
	"github.com/censudex/clients-service/internal/core/ports"
)

const transport = "http"

// ClientHandler handles HTTP requests for client operations. Errors are
// returned to Echo and rendered by the central error handler.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// Register mounts the client routes on g.
func (h *ClientHandler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/verify", h.Verify)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.PATCH("/:id/password", h.UpdatePassword)
	g.DELETE("/:id", h.Delete)
}

func observe(operation string, start time.Time, err *error) {
	metrics.ObserveOperation(transport, operation, start, *err)
}

func invalidPayload() error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
}

// Create handles POST /api/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      createClientRequest  true  "Client attributes"
// @Success      201   {object}  clientMessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) (err error) {
	defer observe("create", time.Now(), &err)

	var req createClientRequest
	if err = c.Bind(&req); err != nil {
		return invalidPayload()
	}

	detail, err := h.service.CreateClient(c.Request().Context(), ports.CreateClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, clientMessageResponse{
		Message: "client created successfully",
		Client:  toClientResponse(detail),
	})
}

// List handles GET /api/clients.
//
// @Summary      List active clients
// @Description  Newest first. Filters combine with AND; name, email and username are case-insensitive partial matches.
// @Tags         clients
// @Produce      json
// @Param        name      query     string  false  "First or last name contains"
// @Param        email     query     string  false  "Email contains"
// @Param        username  query     string  false  "Username contains"
// @Param        isActive  query     string  false  "true or false"
// @Success      200       {object}  listClientsResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) (err error) {
	defer observe("list", time.Now(), &err)

	var q listClientsQuery
	if err = (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return invalidPayload()
	}
	if err = c.Validate(&q); err != nil {
		return err
	}

	result, err := h.service.ListClients(c.Request().Context(), ports.ListClientsInput{
		Name:     q.Name,
		Email:    q.Email,
		Username: q.Username,
		IsActive: q.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /api/clients/:id.
//
// @Summary      Get a client by id
// @Tags         clients
// @Produce      json
// @Param        id               path      string  true   "Client UUID"
// @Param        includePassword  query     bool    false  "Include the credential verifier"
// @Success      200              {object}  clientEnvelope
// @Failure      400              {object}  ErrorResponse
// @Failure      404              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) (err error) {
	defer observe("get", time.Now(), &err)

	detail, err := h.service.GetClient(c.Request().Context(), ports.GetClientInput{
		ID:               c.Param("id"),
		IncludeSensitive: c.QueryParam("includePassword") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientEnvelope{Client: toClientResponse(detail)})
}

// Update handles PATCH /api/clients/:id.
//
// @Summary      Partially update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Client UUID"
// @Param        body  body      updateClientRequest  true  "Fields to change"
// @Success      200   {object}  clientMessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/clients/{id} [patch]
func (h *ClientHandler) Update(c echo.Context) (err error) {
	defer observe("update", time.Now(), &err)

	var req updateClientRequest
	if err = (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return invalidPayload()
	}

	detail, err := h.service.UpdateClient(c.Request().Context(), ports.UpdateClientInput{
		ID:        c.Param("id"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clientMessageResponse{
		Message: "client updated successfully",
		Client:  toClientResponse(detail),
	})
}

// UpdatePassword handles PATCH /api/clients/:id/password.
//
// @Summary      Replace a client's password
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Client UUID"
// @Param        body  body      updatePasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/clients/{id}/password [patch]
func (h *ClientHandler) UpdatePassword(c echo.Context) (err error) {
	defer observe("update_password", time.Now(), &err)

	var req updatePasswordRequest
	if err = (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return invalidPayload()
	}

	if err = h.service.UpdatePassword(c.Request().Context(), ports.UpdatePasswordInput{
		ID:       c.Param("id"),
		Password: req.Password,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated successfully"})
}

// Delete handles DELETE /api/clients/:id.
//
// @Summary      Soft-delete a client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client UUID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) (err error) {
	defer observe("delete", time.Now(), &err)

	if err = h.service.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "client deleted successfully"})
}

// Verify handles POST /api/clients/verify.
//
// @Summary      Verify a username and password
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      verifyCredentialsRequest  true  "Credentials"
// @Success      200   {object}  clientEnvelope
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/clients/verify [post]
func (h *ClientHandler) Verify(c echo.Context) (err error) {
	defer observe("verify_credentials", time.Now(), &err)

	var req verifyCredentialsRequest
	if err = c.Bind(&req); err != nil {
		return invalidPayload()
	}
	if err = c.Validate(&req); err != nil {
		return err
	}

	detail, err := h.service.VerifyCredentials(c.Request().Context(), ports.VerifyCredentialsInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientEnvelope{Client: toClientResponse(detail)})
}
