package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// DirectoryHandler exposes role capabilities and directory administration.
type DirectoryHandler struct {
	sessions  SessionStore
	directory ports.UserDirectory
}

func NewDirectoryHandler(sessions SessionStore, directory ports.UserDirectory) *DirectoryHandler {
	return &DirectoryHandler{sessions: sessions, directory: directory}
}

// Capabilities handles GET /capabilities/:role. The role may be given by key
// or label; unknown roles answer 404.
//
// @Summary      Capability flags of a role
// @Tags         capabilities
// @Produce      json
// @Param        role  path      string  true  "Role key (e.g. dao_governor)"
// @Success      200   {object}  capabilitiesResponse
// @Failure      404   {object}  errorResponse
// @Router       /capabilities/{role} [get]
func (h *DirectoryHandler) Capabilities(c echo.Context) error {
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown role"})
	}
	return c.JSON(http.StatusOK, toCapabilities(role))
}

// AllCapabilities handles GET /capabilities.
//
// @Summary      Capability flags of every role
// @Tags         capabilities
// @Produce      json
// @Success      200  {array}  capabilitiesResponse
// @Router       /capabilities [get]
func (h *DirectoryHandler) AllCapabilities(c echo.Context) error {
	roles := domain.AllRoles()
	out := make([]capabilitiesResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toCapabilities(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Users handles GET /directory/users. The optional mock query parameter
// filters on demo ("true") or live ("false") identities.
//
// @Summary      List directory users
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        mock  query     string  false  "true or false"
// @Success      200   {array}   userResponse
// @Failure      403   {object}  errorResponse
// @Router       /directory/users [get]
func (h *DirectoryHandler) Users(c echo.Context) error {
	if _, err := ctxActivePortal(c, h.sessions); err != nil {
		return err
	}
	filter := strings.ToLower(c.QueryParam("mock"))
	recs := h.directory.Match(func(u domain.UserRecord) bool {
		switch filter {
		case "true":
			return u.IsMock
		case "false":
			return !u.IsMock
		}
		return true
	})

	out := make([]userResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, toUserResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// PurgeDemo handles POST /directory/purge-demo.
//
// @Summary      Remove every demo identity
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  purgeResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /directory/purge-demo [post]
func (h *DirectoryHandler) PurgeDemo(c echo.Context) error {
	p, err := ctxActivePortal(c, h.sessions)
	if err != nil {
		return err
	}

	n, err := p.PurgeDemoUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purgeResponse{Removed: n})
}

func toCapabilities(r domain.Role) capabilitiesResponse {
	return capabilitiesResponse{
		Role:         string(r),
		Label:        r.Label(),
		Capabilities: domain.EvaluateCapabilities(r).Flags(),
	}
}
