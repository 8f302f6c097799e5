// Package validate holds the form checks shared by the contact, apply and
// admin project forms. Every function is pure.
package validate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{5,32}$`)
)

// Field is a named form value.
type Field struct {
	Name  string
	Value string
}

// RequireNonEmpty returns the names of blank fields in the order given.
func RequireNonEmpty(fields ...Field) []string {
	var missing []string
	for _, field := range fields {
		if strings.TrimSpace(field.Value) == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// ValidateEmail accepts anything shaped like local@domain.tld.
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidateHandle checks a Telegram username with or without its leading @.
func ValidateHandle(value string) bool {
	return handlePattern.MatchString(strings.TrimPrefix(value, "@"))
}

// NormalizeHandle trims the value and makes sure it starts with @.
func NormalizeHandle(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "@") {
		return value
	}
	return "@" + value
}

// Contact checks a contact or apply form: required fields, then email, then
// handle. The handle must already be normalized.
func Contact(submission models.ContactSubmission) error {
	missing := RequireNonEmpty(
		Field{"name", submission.Name},
		Field{"email", submission.Email},
		Field{"telegram", strings.TrimPrefix(submission.Telegram, "@")},
		Field{"message", submission.Message},
	)
	if len(missing) > 0 {
		return errs.NewMissingRequiredFieldsError(missing)
	}

	if !ValidateEmail(submission.Email) {
		return errs.NewInvalidEmailError("email")
	}

	if !ValidateHandle(submission.Telegram) {
		return errs.NewInvalidHandleError("telegram")
	}

	return nil
}

// Project checks an admin project form: required fields, then URL shapes,
// then the palette.
func Project(input models.ProjectInput) error {
	missing := RequireNonEmpty(
		Field{"title", input.Title},
		Field{"status", input.Status},
		Field{"description", input.Description},
		Field{"posterUrl", input.PosterURL},
		Field{"videoUrl", input.VideoURL},
	)
	if len(missing) > 0 {
		return errs.NewMissingRequiredFieldsError(missing)
	}

	urls := []Field{
		{"posterUrl", input.PosterURL},
		{"videoUrl", input.VideoURL},
	}
	if input.WebsiteURL != "" {
		urls = append(urls, Field{"websiteUrl", input.WebsiteURL})
	}
	for _, screenshot := range input.Screenshots {
		urls = append(urls, Field{"screenshots", screenshot})
	}
	for _, field := range urls {
		if !ValidateURL(field.Value) {
			return errs.NewInvalidFieldError(field.Name, "must be an http or https URL")
		}
	}

	if input.Color != "" && !input.Color.Valid() {
		return errs.NewInvalidFieldError("color", "not one of the palette colors")
	}

	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// InputOf rebuilds the form values of a stored project, for revalidation
// after a partial update.
func InputOf(project models.Project) models.ProjectInput {
	return models.ProjectInput{
		Title:           project.Title,
		Status:          project.Status,
		Description:     project.Description,
		FullDescription: project.FullDescription,
		WebsiteURL:      project.WebsiteURL,
		Color:           project.Color,
		PosterURL:       project.PosterURL,
		VideoURL:        project.VideoURL,
		Screenshots:     project.Screenshots,
	}
}
