package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/rules"
	"github.com/roomops/mtr-console/internal/services"
)

// GroupManager is the group-service surface the handlers consume.
type GroupManager interface {
	Membership(ctx context.Context, roleKey, upn string) (*services.MembershipStatus, error)
	Apply(ctx context.Context, roleKey, upn string, action rules.MembershipAction) (*services.MembershipChange, error)
}

// GroupHandler serves the membership operations for every group role; the
// role arrives as a path parameter.
type GroupHandler struct {
	groups GroupManager
	logger zerolog.Logger
}

// NewGroupHandler initializes a GroupHandler.
func NewGroupHandler(groups GroupManager, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

type groupRequest struct {
	UPN string `json:"upn"`
}

type groupCheckResponse struct {
	Response
	Role          string `json:"role"`
	IsMember      bool   `json:"isMember"`
	MatchedDomain string `json:"matchedDomain,omitempty"`
}

// Check reports whether the account is a member of the role's group.
func (h *GroupHandler) Check(c echo.Context) error {
	var req groupRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	status, err := h.groups.Membership(c.Request().Context(), c.Param("role"), req.UPN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, groupCheckResponse{
		Response:      succeeded(),
		Role:          status.Role.Key,
		IsMember:      status.IsMember,
		MatchedDomain: string(status.MatchedDomain),
	})
}

type groupChangeResponse struct {
	Response
	Role      string `json:"role"`
	Performed bool   `json:"performed"`
	Reason    string `json:"reason,omitempty"`
	IsMember  bool   `json:"isMember"`
}

// Add ensures membership; already-a-member is a no-op success.
func (h *GroupHandler) Add(c echo.Context) error {
	return h.apply(c, rules.ActionAdd)
}

// Remove ensures non-membership; not-a-member is a no-op success.
func (h *GroupHandler) Remove(c echo.Context) error {
	return h.apply(c, rules.ActionRemove)
}

func (h *GroupHandler) apply(c echo.Context, action rules.MembershipAction) error {
	var req groupRequest
	if err := c.Bind(&req); err != nil {
		return respondBadRequest(c)
	}

	change, err := h.groups.Apply(c.Request().Context(), c.Param("role"), req.UPN, action)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, groupChangeResponse{
		Response:  succeeded(),
		Role:      change.Role.Key,
		Performed: change.Performed,
		Reason:    change.Reason,
		IsMember:  change.IsMember,
	})
}
