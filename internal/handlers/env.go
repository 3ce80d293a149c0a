package handlers

import (
	"elca-web/internal/config"
	"elca-web/internal/mail"
	"elca-web/internal/pdf"
	"elca-web/internal/views"
)

// Env holds the services the handlers depend on besides the database.
type Env struct {
	Config   *config.Config
	Mailer   mail.Sender
	PDF      pdf.Renderer
	Files    pdf.Registry
	PDFViews *views.PDF
}

var env Env

// Init must be called once before the router serves requests.
func Init(e Env) {
	env = e
}
