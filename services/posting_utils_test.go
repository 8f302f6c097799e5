package services

import (
	"testing"

	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatSubject(t *testing.T) {
	sub := submission()
	assert.Equal(t, "Project application: Luke (Imperial Commando)", FormatSubject(sub))

	sub.Source = models.SourceContact
	sub.Project = ""
	assert.Equal(t, "Contact form: Luke", FormatSubject(sub))

	sub.Source = ""
	assert.Equal(t, "Submission: Luke", FormatSubject(sub))
}

func TestFormatPlainText(t *testing.T) {
	sub := submission()
	sub.Role = "Stormtrooper"
	text := FormatPlainText(sub)
	assert.Contains(t, text, "Email: luke@rebellion.org\n")
	assert.Contains(t, text, "Role: Stormtrooper\n")
	assert.Contains(t, text, "I want to join")
}

func TestFormatHTMLEscapes(t *testing.T) {
	sub := submission()
	sub.Name = `<b onclick="x">Luke</b>`
	sub.Message = "line one\nline two"
	body := FormatHTML(sub, "")
	assert.NotContains(t, body, "<b onclick")
	assert.Contains(t, body, "line one<br>line two")
	assert.NotContains(t, body, "Project:</b>")
}

func TestBuildProjectURL(t *testing.T) {
	assert.Equal(t, "https://reunion.example/project/42", BuildProjectURL("https://reunion.example/", "42"))
	assert.Empty(t, BuildProjectURL("", "42"))
	assert.Empty(t, BuildProjectURL("https://reunion.example", ""))
	assert.Equal(t, "https://a.example", GetBaseURL(map[string]string{"BASE_URL": "https://a.example"}))
	assert.Equal(t, "https://b.example", GetBaseURL(map[string]string{"BASE_URL": "https://a.example", "SITE_BASE_URL": "https://b.example"}))
}
