package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shoe-workshop/internal/middleware"
    "github.com/iliyamo/shoe-workshop/internal/model"
    "github.com/iliyamo/shoe-workshop/internal/repository"
    "github.com/iliyamo/shoe-workshop/internal/service"
    "github.com/iliyamo/shoe-workshop/internal/utils"
)

// RolePermissions lists what a role may do; *service.Authorizer satisfies it.
type RolePermissions interface {
    Permissions(role model.Role) ([][]string, error)
}

// DashboardCounter is the part of *service.Dashboard the handler uses.
type DashboardCounter interface {
    Counts(ctx context.Context) (service.DashboardCounts, error)
}

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
    Users     *repository.UserRepo
    Perms     RolePermissions
    Dashboard DashboardCounter
    JWTSecret string
    AccessTTL time.Duration
}

func NewAuthHandler(users *repository.UserRepo, perms RolePermissions, dash DashboardCounter, secret string, ttl time.Duration) *AuthHandler {
    return &AuthHandler{Users: users, Perms: perms, Dashboard: dash, JWTSecret: secret, AccessTTL: ttl}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID    uint64     `json:"id"`
    Name  string     `json:"name"`
    Email string     `json:"email"`
    Role  model.Role `json:"role"`
}

type loginResp struct {
    Message   string    `json:"message"`
    User      userPart  `json:"user"`
    Token     string    `json:"token"`
    ExpiresAt time.Time `json:"expiresAt"`
}

// Login verifies the credentials and returns a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return badRequest(c, "Email and password are required")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if errors.Is(err, repository.ErrUserNotFound) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
    }
    if err != nil {
        return respondError(c, err, nil)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
    }
    var roleName string
    if u.Role != nil {
        roleName = u.Role.Name
    }
    role, ok := model.ParseRole(roleName)
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "Account role has no access"})
    }

    access, err := utils.NewAccessToken(h.JWTSecret, u.ID, role, h.AccessTTL)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, loginResp{
        Message:   "Login successful",
        User:      userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: role},
        Token:     access.Token,
        ExpiresAt: access.Exp,
    })
}

// Me returns the authenticated user, the permissions of their role and
// when the presented token expires.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, actorID(c))
    if errors.Is(err, repository.ErrUserNotFound) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid or expired token"})
    }
    if err != nil {
        return respondError(c, err, nil)
    }
    role, _ := middleware.CurrentRole(c)
    perms, err := h.Perms.Permissions(role)
    if err != nil {
        return respondError(c, err, nil)
    }
    resp := echo.Map{
        "user":        userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: role},
        "permissions": perms,
    }
    if cl, ok := middleware.CurrentClaims(c); ok && cl.ExpiresAt != nil {
        resp["expiresAt"] = cl.ExpiresAt.Time.UTC()
    }
    return c.JSON(http.StatusOK, resp)
}

// ManagementDashboard returns row counts for the overview screen.
func (h *AuthHandler) ManagementDashboard(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    counts, err := h.Dashboard.Counts(ctx)
    if err != nil {
        return respondError(c, err, nil)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Management dashboard", "stats": counts})
}
