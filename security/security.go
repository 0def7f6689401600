// Package security validates and sanitizes user- and agent-supplied
// market content before it reaches the database or the dashboard.
package security

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// MarketInput is the untrusted market content accepted from the API.
type MarketInput struct {
	Title       string `validate:"required,min=1,max=160"`
	Description string `validate:"max=2000"`
	YesLabel    string `validate:"max=20"`
	NoLabel     string `validate:"max=20"`
}

// SanitizedMarket is market content cleared for storage. DescriptionHTML
// is rendered markdown, stripped to the UGC policy, ready for the
// dashboard to inject.
type SanitizedMarket struct {
	Title           string
	Description     string
	DescriptionHTML string
	YesLabel        string
	NoLabel         string
}

// Service sanitizes market input. Safe for concurrent use.
type Service struct {
	validate *validator.Validate
	strict   *bluemonday.Policy
	ugc      *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewService builds a sanitization service with a strict policy for
// titles and labels and a UGC policy for rendered descriptions.
func NewService() *Service {
	return &Service{
		validate: validator.New(),
		strict:   bluemonday.StrictPolicy(),
		ugc:      bluemonday.UGCPolicy(),
		markdown: goldmark.New(),
	}
}

// SanitizeMarket validates the input and returns a cleaned copy, with
// the description rendered from markdown to sanitized HTML.
func (s *Service) SanitizeMarket(in MarketInput) (SanitizedMarket, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.YesLabel = strings.TrimSpace(in.YesLabel)
	in.NoLabel = strings.TrimSpace(in.NoLabel)

	if err := s.validate.Struct(in); err != nil {
		return SanitizedMarket{}, fmt.Errorf("invalid market input: %w", err)
	}

	title := s.strict.Sanitize(in.Title)
	if strings.TrimSpace(title) == "" {
		return SanitizedMarket{}, fmt.Errorf("market title empty after sanitization")
	}

	var rendered bytes.Buffer
	if err := s.markdown.Convert([]byte(in.Description), &rendered); err != nil {
		return SanitizedMarket{}, fmt.Errorf("render description: %w", err)
	}

	return SanitizedMarket{
		Title:           title,
		Description:     s.strict.Sanitize(in.Description),
		DescriptionHTML: string(s.ugc.SanitizeBytes(rendered.Bytes())),
		YesLabel:        s.strict.Sanitize(in.YesLabel),
		NoLabel:         s.strict.Sanitize(in.NoLabel),
	}, nil
}
