package utils

import (
	"regexp"

	"opensocial/internal/apperr"
	"opensocial/internal/models"
)

const (
	UsernameMinLen = 4
	UsernameMaxLen = 20
	NameMaxLen     = 40
	BioMaxLen      = 160
	TitleMinLen    = 10
	TitleMaxLen    = 100
	URLMaxLen      = 1000
	PostMaxLen     = 10000
	CommentMinLen  = 20
	CommentMaxLen  = 2000
	EmailMaxLen    = 255
	PasswordMinLen = 8
)

var (
	usernameStartRe = regexp.MustCompile(`^[a-zA-Z]`)
	usernameCharsRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	urlRe           = regexp.MustCompile(`^(https://.+)?$`)
	emailRe         = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateCredentials checks a signup email and password.
func ValidateCredentials(email, password string) error {
	v := &apperr.ValidationError{}
	if len(email) > EmailMaxLen || !emailRe.MatchString(email) {
		v.Add("email", "must be a valid email address")
	}
	if len(password) < PasswordMinLen {
		v.Add("password", "must be at least 8 characters")
	}
	return v.Err()
}

// ValidateUsername checks length and character rules for a username claim.
func ValidateUsername(username string) error {
	v := &apperr.ValidationError{}
	if len(username) < UsernameMinLen || len(username) > UsernameMaxLen {
		v.Add("username", "must be between 4 and 20 characters")
	}
	if !usernameStartRe.MatchString(username) {
		v.Add("username", "must start with a letter")
	}
	if !usernameCharsRe.MatchString(username) {
		v.Add("username", "may only contain letters, numbers and underscores")
	}
	return v.Err()
}

// ValidateProfile checks display name and bio limits.
func ValidateProfile(name, bio string) error {
	v := &apperr.ValidationError{}
	if len(name) > NameMaxLen {
		v.Add("name", "must be at most 40 characters")
	}
	if len(bio) > BioMaxLen {
		v.Add("bio", "must be at most 160 characters")
	}
	return v.Err()
}

// ValidatePost checks a post's fields. The title must already be
// whitespace-collapsed and the content normalized.
func ValidatePost(title, url, content, category string) error {
	v := &apperr.ValidationError{}
	if len(title) < TitleMinLen || len(title) > TitleMaxLen {
		v.Add("title", "must be between 10 and 100 characters")
	}
	if len(url) > URLMaxLen {
		v.Add("url", "must be at most 1000 characters")
	} else if !urlRe.MatchString(url) {
		v.Add("url", "must start with https://")
	}
	if len(content) > PostMaxLen {
		v.Add("content", "must be at most 10000 characters")
	}
	if !validCategory(category) {
		v.Add("category", "unknown category")
	}
	return v.Err()
}

// ValidateComment checks a comment body after normalization.
func ValidateComment(content string) error {
	v := &apperr.ValidationError{}
	if len(content) < CommentMinLen || len(content) > CommentMaxLen {
		v.Add("content", "must be between 20 and 2000 characters")
	}
	return v.Err()
}

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}
