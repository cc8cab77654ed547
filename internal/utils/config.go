package utils

import (
	"time"

	"github.com/roomops/mtr-console/pkg/file"
)

// GroupRef identifies one of the fixed target groups in the directory.
type GroupRef struct {
	ObjectID string `yaml:"object_id"` // Stable directory object id of the group
}

// Config represents the structure of the configuration file.
type Config struct {
	Server struct {
		BindAddress  string        `yaml:"bind_address"`  // Interface the local API binds to
		Port         int           `yaml:"port"`          // Port the UI shell connects to
		ReadTimeout  time.Duration `yaml:"read_timeout"`  // HTTP read timeout
		WriteTimeout time.Duration `yaml:"write_timeout"` // HTTP write timeout
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"` // zerolog level: debug, info, warn, error
	} `yaml:"logging"`

	Auth struct {
		TokenEndpoint    string `yaml:"token_endpoint"`     // Identity platform token endpoint base
		TenantID         string `yaml:"tenant_id"`          // Directory tenant id
		ClientID         string `yaml:"client_id"`          // Application (client) id
		ClientSecretFile string `yaml:"client_secret_file"` // Path to the client secret
	} `yaml:"auth"`

	Entra struct {
		BaseURL  string `yaml:"base_url"`  // Identity directory API root
		Resource string `yaml:"resource"`  // Token resource for the identity directory
		PageSize int    `yaml:"page_size"` // Collection page size
	} `yaml:"entra"`

	Intune struct {
		BaseURL  string `yaml:"base_url"`  // Device-management API root
		Resource string `yaml:"resource"`  // Token resource for the device directory
		PageSize int    `yaml:"page_size"` // Collection page size
	} `yaml:"intune"`

	Groups struct {
		ResourceAccount GroupRef `yaml:"resource_account"`
		RoomAccount     GroupRef `yaml:"room_account"`
		ProLicense      GroupRef `yaml:"pro_license"`
	} `yaml:"groups"`

	Accounts struct {
		UsageLocation string `yaml:"usage_location"` // ISO country code stamped on new accounts
	} `yaml:"accounts"`

	Diagnostics struct {
		MinimumAppVersion string `yaml:"minimum_app_version"` // Lowest supported Teams Rooms app version
	} `yaml:"diagnostics"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	// Use the ReadYamlFile method from fileClient
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
