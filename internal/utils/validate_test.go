package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"anna", "Anna_42", "a_b_c_d", strings.Repeat("x", 20)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{
		"abc",                    // too short
		strings.Repeat("x", 21),  // too long
		"1abc",                   // must start with a letter
		"_abc",                   // must start with a letter
		"ab cd",                  // no spaces
		"ab-cd",                  // no dashes
		"añña",                   // ascii only
	}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidateUsernameReportsFields(t *testing.T) {
	err := ValidateUsername("1a")
	require.Error(t, err)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.NotEmpty(t, v.Fields["username"])
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile("", ""))
	assert.NoError(t, ValidateProfile(strings.Repeat("n", 40), strings.Repeat("b", 160)))
	assert.Error(t, ValidateProfile(strings.Repeat("n", 41), ""))
	assert.Error(t, ValidateProfile("", strings.Repeat("b", 161)))
}

func TestValidatePost(t *testing.T) {
	longEnough := "a title long enough"

	assert.NoError(t, ValidatePost(longEnough, "", "", models.CategoryGeneral))
	assert.NoError(t, ValidatePost(longEnough, "https://example.com", "hello", models.CategoryAsk))

	assert.Error(t, ValidatePost("short", "", "", models.CategoryGeneral))
	assert.Error(t, ValidatePost(strings.Repeat("t", 101), "", "", models.CategoryGeneral))
	assert.Error(t, ValidatePost(longEnough, "http://example.com", "", models.CategoryGeneral))
	assert.Error(t, ValidatePost(longEnough, "ftp://example.com", "", models.CategoryGeneral))
	assert.Error(t, ValidatePost(longEnough, "https://"+strings.Repeat("x", 1000), "", models.CategoryGeneral))
	assert.Error(t, ValidatePost(longEnough, "", strings.Repeat("c", 10001), models.CategoryGeneral))
	assert.Error(t, ValidatePost(longEnough, "", "", "nonsense"))
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, ValidateComment(strings.Repeat("c", 20)))
	assert.NoError(t, ValidateComment(strings.Repeat("c", 2000)))
	assert.Error(t, ValidateComment(strings.Repeat("c", 19)))
	assert.Error(t, ValidateComment(strings.Repeat("c", 2001)))
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("a@example.com", "longpassword"))
	assert.Error(t, ValidateCredentials("not-an-email", "longpassword"))
	assert.Error(t, ValidateCredentials("a@example.com", "short"))
	assert.Error(t, ValidateCredentials("a b@example.com", "longpassword"))
}
