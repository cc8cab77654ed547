package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUPN is returned when a user principal name does not contain
// exactly one '@' with non-empty parts on both sides.
var ErrInvalidUPN = errors.New("invalid user principal name")

// tenantDefaultSuffix is the platform-assigned fallback domain suffix.
const tenantDefaultSuffix = ".onmicrosoft.com"

// MatchedDomain tags which candidate domain a directory lookup matched.
type MatchedDomain string

const (
	DomainOriginal      MatchedDomain = "original"
	DomainTenantDefault MatchedDomain = "tenantDefault"
)

// LookupCandidate is one UPN form to try against the directory.
type LookupCandidate struct {
	UPN    string
	Domain MatchedDomain
}

// SplitUPN splits a user principal name into its local part and domain.
func SplitUPN(upn string) (local, domain string, err error) {
	at := strings.Index(upn, "@")
	if at <= 0 || at == len(upn)-1 || at != strings.LastIndex(upn, "@") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidUPN, upn)
	}
	return upn[:at], upn[at+1:], nil
}

// TenantDefaultDomain derives the tenant-default domain from a primary
// domain: the label before the first dot plus the onmicrosoft.com suffix.
// A dotless domain is used whole as the label.
func TenantDefaultDomain(domain string) string {
	label := domain
	if i := strings.Index(domain, "."); i >= 0 {
		label = domain[:i]
	}
	return label + tenantDefaultSuffix
}

// LookupOrder returns the two candidate UPNs in the fixed lookup sequence:
// the UPN as typed, then the tenant-default form. Callers must try the
// original first and fall through to the tenant-default form only when the
// original is absent, not when it errors.
func LookupOrder(upn string) ([]LookupCandidate, error) {
	local, domain, err := SplitUPN(upn)
	if err != nil {
		return nil, err
	}
	return []LookupCandidate{
		{UPN: upn, Domain: DomainOriginal},
		{UPN: local + "@" + TenantDefaultDomain(domain), Domain: DomainTenantDefault},
	}, nil
}
