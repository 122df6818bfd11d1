// conf/validate.go

package conf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateSheetsSettings(&settings.Sheets); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateValidationSettings(&settings.Validation); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateSheetsSettings(sheets *SheetsSettings) error {
	if sheets.BaseURL == "" {
		return fmt.Errorf("sheets base URL must not be empty")
	}
	if sheets.CacheTTL < 0 {
		return fmt.Errorf("sheets cache TTL must not be negative: %v", sheets.CacheTTL)
	}
	if sheets.Timeout <= 0 {
		return fmt.Errorf("sheets fetch timeout must be positive: %v", sheets.Timeout)
	}
	return nil
}

func validateValidationSettings(validation *ValidationSettings) error {
	if strings.TrimSpace(validation.StartDate) == "" {
		return fmt.Errorf("validation start date must not be empty")
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(validation.StartDate)); err != nil {
		return fmt.Errorf("validation start date must be in YYYY-MM-DD format: %q", validation.StartDate)
	}
	return nil
}

func validateWebServerSettings(webserver *WebServerSettings) error {
	if !webserver.Enabled {
		return nil
	}
	port, err := strconv.Atoi(webserver.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid web server port: %s", webserver.Port)
	}
	return nil
}
