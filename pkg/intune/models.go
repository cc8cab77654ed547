package intune

// Device is an imported corporate device identity in the device-management
// service.
type Device struct {
	ID                         string `json:"id"`
	ImportedDeviceIdentifier   string `json:"importedDeviceIdentifier"`
	ImportedDeviceIdentityType string `json:"importedDeviceIdentityType"`
	Description                string `json:"description,omitempty"`
	EnrollmentState            string `json:"enrollmentState,omitempty"`
	LastContactedDateTime      string `json:"lastContactedDateTime,omitempty"`
}

// devicePage is one page of the imported device identity collection.
type devicePage struct {
	Value    []Device `json:"value"`
	NextLink string   `json:"@odata.nextLink"`
}

// importRequest is the wire form of an import operation.
type importRequest struct {
	ImportedDeviceIdentities          []importedIdentity `json:"importedDeviceIdentities"`
	OverwriteImportedDeviceIdentities bool               `json:"overwriteImportedDeviceIdentities"`
}

type importedIdentity struct {
	ImportedDeviceIdentifier   string `json:"importedDeviceIdentifier"`
	ImportedDeviceIdentityType string `json:"importedDeviceIdentityType"`
	Description                string `json:"description,omitempty"`
}
