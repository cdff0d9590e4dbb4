package http

import (
	"net/http"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Login", err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: res.Token,
		ExpiresAt:   res.ExpiresAt,
		User:        dto.FromUser(res.User),
	})
}

// SendReset всегда отвечает 202, даже если адреса нет.
func (h *Handler) SendReset(c *gin.Context) {
	var req dto.SendResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "SendReset", err)
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "SendReset", err)
		return
	}
	c.JSON(http.StatusAccepted, dto.StatusResponse{Status: "accepted"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "ResetPassword", err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		h.fail(c, "ResetPassword", err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	var req dto.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "AcceptInvite", err)
		return
	}
	u, err := h.auth.AcceptInvite(c.Request.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		h.fail(c, "AcceptInvite", err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromUser(u))
}

func (h *Handler) InviteAdmin(c *gin.Context) {
	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "InviteAdmin", err)
		return
	}
	inv, err := h.auth.InviteAdmin(c.Request.Context(), req.Email, models.Role(req.Role))
	if err != nil {
		h.fail(c, "InviteAdmin", err)
		return
	}
	c.JSON(http.StatusCreated, dto.InviteResponse{
		Email:     inv.Email,
		Role:      string(inv.Role),
		ExpiresAt: inv.ExpiresAt,
	})
}
