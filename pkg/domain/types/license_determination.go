package types

import "fmt"

// LicenseDetermination is the overall license outcome of an analysis
type LicenseDetermination string

const (
	LicenseRequired           LicenseDetermination = "required"
	LicenseExceptionAvailable LicenseDetermination = "exception_available"
	LicenseNotRequired        LicenseDetermination = "not_required"
)

// IsValid checks if the determination is valid
func (d LicenseDetermination) IsValid() bool {
	switch d {
	case LicenseRequired,
		LicenseExceptionAvailable,
		LicenseNotRequired:
		return true
	default:
		return false
	}
}

// String returns the string representation of the determination
func (d LicenseDetermination) String() string {
	return string(d)
}

// ParseLicenseDetermination parses a string into a LicenseDetermination
func ParseLicenseDetermination(s string) (LicenseDetermination, error) {
	d := LicenseDetermination(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid license determination: %s", s)
	}
	return d, nil
}
