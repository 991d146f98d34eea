package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/repository"
    "github.com/iliyamo/shoe-workshop/internal/utils"
)

// WorkerHandler serves /api/workers, the user accounts of the shop.
type WorkerHandler struct {
    Users      *repository.UserRepo
    BcryptCost int
}

func NewWorkerHandler(users *repository.UserRepo, bcryptCost int) *WorkerHandler {
    return &WorkerHandler{Users: users, BcryptCost: bcryptCost}
}

var workerErrs = errMsgs{
    repository.ErrUserNotFound:     "Worker not found",
    repository.ErrDuplicate:        "User with this email already exists",
    repository.ErrConflict:         "Cannot delete worker with associated orders",
    repository.ErrInvalidReference: "Role does not exist",
}

type workerReq struct {
    Name     *string  `json:"name"`
    Email    *string  `json:"email"`
    Password *string  `json:"password"`
    RoleID   *flexInt `json:"roleId"`
}

func passwordError(c echo.Context, err error) error {
    if errors.Is(err, utils.ErrPasswordTooShort) {
        return badRequest(c, "Password must be at least 6 characters")
    }
    return respondError(c, err, nil)
}

func (h *WorkerHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    users, err := h.Users.List(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, users)
}

func (h *WorkerHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid worker ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return respondError(c, err, workerErrs)
    }
    return c.JSON(http.StatusOK, u)
}

// Create adds a user with a bcrypt-hashed password.
func (h *WorkerHandler) Create(c echo.Context) error {
    var req workerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    u := model.User{RoleID: idOf(req.RoleID)}
    if req.Name != nil {
        u.Name = strings.TrimSpace(*req.Name)
    }
    if req.Email != nil {
        u.Email = strings.TrimSpace(*req.Email)
    }
    if u.Name == "" || u.Email == "" || req.Password == nil || *req.Password == "" || u.RoleID == 0 {
        return badRequest(c, "All fields are required")
    }
    hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
    if err != nil {
        return passwordError(c, err)
    }
    u.PasswordHash = hash
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Users.Create(ctx, &u); err != nil {
        return respondError(c, err, workerErrs)
    }
    return c.JSON(http.StatusCreated, u)
}

// Update applies the supplied fields; a new password is re-hashed.
func (h *WorkerHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid worker ID")
    }
    var req workerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return respondError(c, err, workerErrs)
    }
    if req.Name != nil {
        if u.Name = strings.TrimSpace(*req.Name); u.Name == "" {
            return badRequest(c, "Name cannot be empty")
        }
    }
    if req.Email != nil {
        if u.Email = strings.TrimSpace(*req.Email); u.Email == "" {
            return badRequest(c, "Email cannot be empty")
        }
    }
    if req.RoleID != nil {
        if u.RoleID = idOf(req.RoleID); u.RoleID == 0 {
            return badRequest(c, "Invalid roleId")
        }
    }
    if req.Password != nil {
        hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
        if err != nil {
            return passwordError(c, err)
        }
        u.PasswordHash = hash
    }
    if err := h.Users.Update(ctx, u); err != nil {
        return respondError(c, err, workerErrs)
    }
    return c.JSON(http.StatusOK, u)
}

// Delete removes a worker who has not placed orders, along with their logs.
func (h *WorkerHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid worker ID")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Users.Delete(ctx, id); err != nil {
        return respondError(c, err, workerErrs)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Worker deleted successfully"})
}
