package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/repository"
)

// RoleHandler serves /api/roles.
type RoleHandler struct {
    Roles *repository.RoleRepo
}

func NewRoleHandler(roles *repository.RoleRepo) *RoleHandler { return &RoleHandler{Roles: roles} }

var roleErrs = errMsgs{
    repository.ErrRoleNotFound: "Role not found",
    repository.ErrDuplicate:    "Role with this name already exists",
    repository.ErrConflict:     "Cannot delete role that is still assigned",
}

type roleReq struct {
    Name string `json:"name"`
}

func (h *RoleHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    roles, err := h.Roles.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid role ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    r, err := h.Roles.GetByID(ctx, id)
    if err != nil {
        return respondError(c, err, roleErrs)
    }
    return c.JSON(http.StatusOK, r)
}

func (h *RoleHandler) Create(c echo.Context) error {
    var req roleReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
        return badRequest(c, "Name is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    r, err := h.Roles.Create(ctx, req.Name)
    if err != nil {
        return respondError(c, err, roleErrs)
    }
    return c.JSON(http.StatusCreated, r)
}

func (h *RoleHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid role ID")
    }
    var req roleReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
        return badRequest(c, "Name is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    r, err := h.Roles.Rename(ctx, id, req.Name)
    if err != nil {
        return respondError(c, err, roleErrs)
    }
    return c.JSON(http.StatusOK, r)
}

// Delete refuses roles still held by users or referenced by worker logs.
func (h *RoleHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid role ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Roles.Delete(ctx, id); err != nil {
        return respondError(c, err, roleErrs)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Role deleted successfully"})
}
