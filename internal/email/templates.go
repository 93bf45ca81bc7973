package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type leadAssignedEmailData struct {
	baseEmailData
	ContractorName string
	TradeType      string
	ZipCode        string
}

type leadRevealedEmailData struct {
	baseEmailData
	RequesterName string
	BusinessName  string
}

type leadMatchedEmailData struct {
	baseEmailData
	ContractorName string
	TradeType      string
}

type creditsGrantedEmailData struct {
	baseEmailData
	ContractorName string
	Credits        int
	Balance        int
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
