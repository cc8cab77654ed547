package rules

import "fmt"

const (
	// SerialLength is the exact serial number length for the Teams Rooms
	// hardware family this console provisions.
	SerialLength = 12

	// serialSuffix is the final character every serial of this family carries.
	serialSuffix = '2'
)

// Validation is the outcome of a local input check. Exactly one terminal
// outcome exists per input; Message is safe to show to the operator.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidateSerial checks a device serial number as typed, without trimming.
// Rules are evaluated in a fixed order and the first failure wins.
func ValidateSerial(serial string) Validation {
	switch {
	case len(serial) < SerialLength:
		return Validation{Message: fmt.Sprintf("too short: %d/%d", len(serial), SerialLength)}
	case len(serial) > SerialLength:
		return Validation{Message: fmt.Sprintf("too long: %d/%d", len(serial), SerialLength)}
	case serial[SerialLength-1] != serialSuffix:
		return Validation{Message: "serial number must end with 2"}
	default:
		return Validation{Valid: true, Message: "serial number is valid"}
	}
}
