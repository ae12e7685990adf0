package namematch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Submission is a raw service-provider submission before cleaning.
type Submission struct {
	Name         string            `json:"name"`
	Phone        string            `json:"phone,omitempty"`
	Email        string            `json:"email,omitempty"`
	ServiceType  string            `json:"service_type,omitempty"`
	BusinessName string            `json:"business_name,omitempty"`
	Address      string            `json:"address,omitempty"`
	Website      string            `json:"website,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone reduces a phone number to bare digits and strips the
// region prefix: a 91 country code on a 12-digit number and a trunk 0 on an
// 11-digit number both reduce to the 10-digit subscriber number.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		return digits[1:]
	}
	return digits
}

// ValidateSubmission cleans a raw submission and reports whether it is
// usable: name at least 2 characters after trimming, phone (if present)
// normalizing to 10-15 digits, email (if present) a basic local@domain.tld,
// and at least one of phone/email surviving cleaning.
func ValidateSubmission(sub Submission) (Submission, []string, bool) {
	var errs []string

	cleaned := sub
	cleaned.Name = strings.TrimSpace(sub.Name)
	if utf8.RuneCountInString(cleaned.Name) < 2 {
		errs = append(errs, "name must be at least 2 characters")
	}

	cleaned.Phone = ""
	if strings.TrimSpace(sub.Phone) != "" {
		digits := NormalizePhone(sub.Phone)
		if len(digits) >= 10 && len(digits) <= 15 {
			cleaned.Phone = digits
		} else {
			errs = append(errs, fmt.Sprintf("phone must normalize to 10-15 digits, got %d", len(digits)))
		}
	}

	cleaned.Email = ""
	if e := strings.ToLower(strings.TrimSpace(sub.Email)); e != "" {
		if emailPattern.MatchString(e) {
			cleaned.Email = e
		} else {
			errs = append(errs, "email is not a valid address")
		}
	}

	if cleaned.Phone == "" && cleaned.Email == "" {
		errs = append(errs, "at least one of phone or email is required")
	}

	cleaned.ServiceType = strings.TrimSpace(sub.ServiceType)
	cleaned.BusinessName = strings.TrimSpace(sub.BusinessName)
	cleaned.Address = strings.TrimSpace(sub.Address)
	cleaned.Website = strings.TrimSpace(sub.Website)

	return cleaned, errs, len(errs) == 0
}
