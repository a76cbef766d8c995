package api

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"karaoke/internal/language"
	"karaoke/internal/stage"
)

// Platforms accepted for CreateJobRequest.Platform.
var Platforms = []string{"YOUTUBE", "TIKTOK", "SHORTS"}

// CreateJobRequest is the submission payload.
type CreateJobRequest struct {
	Title           string   `json:"title" validate:"required"`
	Artist          string   `json:"artist" validate:"required"`
	Platform        string   `json:"platform" validate:"omitempty,oneof=YOUTUBE TIKTOK SHORTS"`
	SourceLanguage  string   `json:"sourceLanguage" validate:"omitempty,langtag"`
	TargetLanguages []string `json:"targetLanguages" validate:"omitempty,dive,langtag"`
	Template        string   `json:"template" validate:"omitempty,oneof=standard bilingual triple"`
	MediaURL        string   `json:"mediaUrl" validate:"omitempty,mediasource"`
	UseMockData     bool     `json:"useMockData"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Normalize(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("mediasource", func(fl validator.FieldLevel) bool {
		return validMediaSource(fl.Field().String())
	})
	return v
}

// Normalize trims free-form fields and upper/lower-cases the enumerations so
// validation accepts "youtube" and "Triple".
func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Artist = strings.TrimSpace(r.Artist)
	r.Platform = strings.ToUpper(strings.TrimSpace(r.Platform))
	r.SourceLanguage = strings.TrimSpace(r.SourceLanguage)
	r.Template = strings.ToLower(strings.TrimSpace(r.Template))
	r.MediaURL = strings.TrimSpace(r.MediaURL)
	targets := make([]string, 0, len(r.TargetLanguages))
	for _, tag := range r.TargetLanguages {
		if tag = strings.TrimSpace(tag); tag != "" {
			targets = append(targets, tag)
		}
	}
	r.TargetLanguages = targets
}

// Validate checks the request after normalization.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// Mode is mock when the caller asked for it or gave no media source.
func (r CreateJobRequest) Mode() stage.Mode {
	if r.UseMockData || r.MediaURL == "" {
		return stage.ModeMock
	}
	return stage.ModeNormal
}

// validMediaSource accepts http(s) URLs with a host and anything without a
// scheme, which is treated as a local path.
func validMediaSource(value string) bool {
	if !strings.Contains(value, "://") {
		return true
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
