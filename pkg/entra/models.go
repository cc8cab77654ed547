package entra

// Account is a directory user record, trimmed to the fields the console
// works with.
type Account struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail,omitempty"`
	AccountEnabled    bool   `json:"accountEnabled"`
}

// CreateAccountRequest is the payload for creating a resource account.
type CreateAccountRequest struct {
	DisplayName   string
	UPN           string
	MailNickname  string
	Password      string
	UsageLocation string
}

// directoryObject is the minimal shape of a group member entry.
type directoryObject struct {
	ID string `json:"id"`
}

// memberPage is one page of a group's member collection.
type memberPage struct {
	Value    []directoryObject `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// createUserBody is the wire form of a user creation request.
type createUserBody struct {
	AccountEnabled    bool             `json:"accountEnabled"`
	DisplayName       string           `json:"displayName"`
	MailNickname      string           `json:"mailNickname"`
	UserPrincipalName string           `json:"userPrincipalName"`
	UsageLocation     string           `json:"usageLocation,omitempty"`
	PasswordProfile   *passwordProfile `json:"passwordProfile,omitempty"`
}

type passwordProfile struct {
	Password                      string `json:"password"`
	ForceChangePasswordNextSignIn bool   `json:"forceChangePasswordNextSignIn"`
}
