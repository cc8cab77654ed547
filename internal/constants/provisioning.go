package constants

const (
	// DeviceIdentityTypeSerial is the identity type under which corporate
	// devices are imported into the device-management service.
	DeviceIdentityTypeSerial = "serialNumber"

	// DefaultPageSize bounds collection pages fetched from the directories.
	DefaultPageSize = 100

	// GeneratedPasswordLength is the length of passwords minted for resource
	// accounts when the operator does not supply one.
	GeneratedPasswordLength = 16
)
