package entra

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/constants"
	"github.com/roomops/mtr-console/pkg/httpclient"
)

// accountSelect limits user reads to the fields the console needs.
const accountSelect = "id,userPrincipalName,displayName,mail,accountEnabled"

// IdentityDirectory is the identity-service surface the console depends on.
type IdentityDirectory interface {
	FindByUPN(ctx context.Context, upn string) (*Account, error)
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)
	UpdateDisplayName(ctx context.Context, upn, displayName string) error
	ResetPassword(ctx context.Context, upn, password string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
	AddMember(ctx context.Context, groupID, objectID string) error
	RemoveMember(ctx context.Context, groupID, objectID string) error
}

// Client talks to the directory's user and group endpoints.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	resource string
	pageSize int
	logger   zerolog.Logger
}

// NewClient creates a directory client rooted at baseURL, requesting tokens
// for the given resource.
func NewClient(http *httpclient.Client, baseURL, resource string, pageSize int, logger zerolog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	return &Client{
		http:     http,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		resource: resource,
		pageSize: pageSize,
		logger:   logger,
	}
}

// FindByUPN fetches a user by principal name. Absence surfaces as
// httpclient.ErrNotFound, never as a transport failure.
func (c *Client) FindByUPN(ctx context.Context, upn string) (*Account, error) {
	endpoint := fmt.Sprintf("%s/users/%s?$select=%s", c.baseURL, url.PathEscape(upn), accountSelect)

	var account Account
	if err := c.http.DoJSON(ctx, "GET", endpoint, c.resource, nil, &account); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("upn", upn).Str("object_id", account.ID).Msg("Resolved account")
	return &account, nil
}

// CreateAccount creates a resource account and returns the creation response.
// Callers re-read the account afterwards rather than trusting this response
// as authoritative.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	body := createUserBody{
		AccountEnabled:    true,
		DisplayName:       req.DisplayName,
		MailNickname:      req.MailNickname,
		UserPrincipalName: req.UPN,
		UsageLocation:     req.UsageLocation,
		PasswordProfile: &passwordProfile{
			Password:                      req.Password,
			ForceChangePasswordNextSignIn: false,
		},
	}

	var account Account
	if err := c.http.DoJSON(ctx, "POST", c.baseURL+"/users", c.resource, body, &account); err != nil {
		return nil, err
	}

	c.logger.Info().Str("upn", req.UPN).Str("object_id", account.ID).Msg("Created resource account")
	return &account, nil
}

// UpdateDisplayName patches a user's display name.
func (c *Client) UpdateDisplayName(ctx context.Context, upn, displayName string) error {
	endpoint := c.baseURL + "/users/" + url.PathEscape(upn)
	body := map[string]string{"displayName": displayName}
	return c.http.DoJSON(ctx, "PATCH", endpoint, c.resource, body, nil)
}

// ResetPassword sets a new password on the account's password profile.
func (c *Client) ResetPassword(ctx context.Context, upn, password string) error {
	endpoint := c.baseURL + "/users/" + url.PathEscape(upn)
	body := map[string]any{
		"passwordProfile": passwordProfile{
			Password:                      password,
			ForceChangePasswordNextSignIn: false,
		},
	}
	return c.http.DoJSON(ctx, "PATCH", endpoint, c.resource, body, nil)
}

// ListGroupMembers returns the object ids of every member of the group,
// following collection paging until the directory reports no next page.
func (c *Client) ListGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	next := fmt.Sprintf("%s/groups/%s/members?$select=id&$top=%d", c.baseURL, url.PathEscape(groupID), c.pageSize)

	var ids []string
	for next != "" {
		var page memberPage
		if err := c.http.DoJSON(ctx, "GET", next, c.resource, nil, &page); err != nil {
			return nil, err
		}
		for _, member := range page.Value {
			ids = append(ids, member.ID)
		}
		next = page.NextLink
	}

	c.logger.Debug().Str("group_id", groupID).Int("members", len(ids)).Msg("Fetched group member list")
	return ids, nil
}

// AddMember adds a directory object to the group by reference.
func (c *Client) AddMember(ctx context.Context, groupID, objectID string) error {
	endpoint := fmt.Sprintf("%s/groups/%s/members/$ref", c.baseURL, url.PathEscape(groupID))
	body := map[string]string{
		"@odata.id": fmt.Sprintf("%s/directoryObjects/%s", c.baseURL, objectID),
	}
	return c.http.DoJSON(ctx, "POST", endpoint, c.resource, body, nil)
}

// RemoveMember removes a directory object from the group by reference.
func (c *Client) RemoveMember(ctx context.Context, groupID, objectID string) error {
	endpoint := fmt.Sprintf("%s/groups/%s/members/%s/$ref", c.baseURL, url.PathEscape(groupID), url.PathEscape(objectID))
	return c.http.DoJSON(ctx, "DELETE", endpoint, c.resource, nil, nil)
}
