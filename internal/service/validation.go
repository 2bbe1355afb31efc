package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	licensePattern = regexp.MustCompile(`^[A-Z0-9-]{5,20}$`)
	platePattern   = regexp.MustCompile(`^[A-Z0-9 -]{4,15}$`)
)

const minVehicleYear = 1950

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email,max=100"); err != nil {
		return "", invalid("email %q is not valid", email)
	}
	return email, nil
}

// normalizeOptionalEmail accepts an empty value.
func normalizeOptionalEmail(email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", nil
	}
	return normalizeEmail(email)
}

func normalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(cleaned) {
		return "", invalid("phone %q must have 10 to 15 digits", phone)
	}
	return cleaned, nil
}

func normalizeLicense(license string) (string, error) {
	license = strings.ToUpper(strings.TrimSpace(license))
	if !licensePattern.MatchString(license) {
		return "", invalid("license number %q is not valid", license)
	}
	return license, nil
}

func normalizePlate(plate string) (string, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if !platePattern.MatchString(plate) {
		return "", invalid("license plate %q is not valid", plate)
	}
	return plate, nil
}

func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s is required", field)
	}
	if len(value) > max {
		return "", invalid("%s must be at most %d characters", field, max)
	}
	return value, nil
}

func validateYear(year *int, now time.Time) error {
	if year == nil {
		return nil
	}
	if *year < minVehicleYear || *year > now.Year()+1 {
		return invalid("year must be between %d and %d", minVehicleYear, now.Year()+1)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return invalid("password must be at least 6 characters")
	}
	if len(password) > 72 {
		return invalid("password must be at most 72 characters")
	}
	return nil
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validate.Var(username, "required,min=3,max=50,alphanum"); err != nil {
		return "", invalid("username must be 3 to 50 letters or digits")
	}
	return username, nil
}
