package intune

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roomops/mtr-console/internal/constants"
	"github.com/roomops/mtr-console/pkg/httpclient"
)

// DeviceDirectory is the device-management surface the console depends on.
type DeviceDirectory interface {
	FindBySerial(ctx context.Context, serial string) (*Device, error)
	ImportSerial(ctx context.Context, serial, description string) error
}

// Client talks to the device-management service's imported device identities.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	resource string
	pageSize int
	logger   zerolog.Logger
}

// NewClient creates a device-management client rooted at baseURL.
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

// FindBySerial locates an imported device identity by exact serial match.
// The service's server-side filter on the identifier field is unreliable, so
// the full collection is paged in and scanned in memory. Absence surfaces as
// httpclient.ErrNotFound.
func (c *Client) FindBySerial(ctx context.Context, serial string) (*Device, error) {
	next := fmt.Sprintf("%s/deviceManagement/importedDeviceIdentities?$top=%d", c.baseURL, c.pageSize)

	scanned := 0
	for next != "" {
		var page devicePage
		if err := c.http.DoJSON(ctx, "GET", next, c.resource, nil, &page); err != nil {
			return nil, err
		}
		for i := range page.Value {
			scanned++
			if page.Value[i].ImportedDeviceIdentifier == serial {
				c.logger.Debug().Str("serial", serial).Int("scanned", scanned).Msg("Found imported device identity")
				return &page.Value[i], nil
			}
		}
		next = page.NextLink
	}

	c.logger.Debug().Str("serial", serial).Int("scanned", scanned).Msg("Serial not present in device directory")
	return nil, httpclient.ErrNotFound
}

// ImportSerial registers a serial number as a corporate device identity.
func (c *Client) ImportSerial(ctx context.Context, serial, description string) error {
	body := importRequest{
		ImportedDeviceIdentities: []importedIdentity{{
			ImportedDeviceIdentifier:   serial,
			ImportedDeviceIdentityType: constants.DeviceIdentityTypeSerial,
			Description:                description,
		}},
	}

	endpoint := c.baseURL + "/deviceManagement/importedDeviceIdentities/importDeviceIdentityList"
	if err := c.http.DoJSON(ctx, "POST", endpoint, c.resource, body, nil); err != nil {
		return err
	}

	c.logger.Info().Str("serial", serial).Msg("Imported device identity")
	return nil
}
