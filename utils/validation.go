// utils/validation.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// Reference images accepted from clients.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

const MaxImageSize = 5 * 1024 * 1024

// NormalizePhone strips spaces, dashes and parentheses
func NormalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

func ValidateEmail(email string) bool {
	return validate.Var(strings.TrimSpace(email), "required,email") == nil
}

// ValidateImage checks the content type and size of an uploaded reference image.
func ValidateImage(contentType string, size int64) bool {
	return AllowedImageTypes[strings.ToLower(contentType)] && size > 0 && size <= MaxImageSize
}
