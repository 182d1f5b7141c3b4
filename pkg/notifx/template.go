package notifx

import (
	"bytes"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"
)

// EmailTemplate is the source of a named email. Subject and Text are text
// templates; HTML is escaped as html/template. Text or HTML may be empty.
type EmailTemplate struct {
	Subject string
	Text    string
	HTML    string
}

// RenderedEmail is the output of a template render.
type RenderedEmail struct {
	Subject  string
	TextBody string
	HTMLBody string
}

type compiledTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// TemplateRegistry stores and renders named email templates.
type TemplateRegistry struct {
	templates map[string]compiledTemplate
	mu        sync.RWMutex
}

// NewTemplateRegistry creates a new template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]compiledTemplate),
	}
}

// Register parses and stores a template by name.
func (r *TemplateRegistry) Register(name string, tmpl EmailTemplate) error {
	var (
		ct  compiledTemplate
		err error
	)

	if ct.subject, err = texttemplate.New(name + ".subject").Parse(tmpl.Subject); err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}
	if tmpl.Text != "" {
		if ct.text, err = texttemplate.New(name + ".text").Parse(tmpl.Text); err != nil {
			return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
		}
	}
	if tmpl.HTML != "" {
		if ct.html, err = htmltemplate.New(name + ".html").Parse(tmpl.HTML); err != nil {
			return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
		}
	}

	r.mu.Lock()
	r.templates[name] = ct
	r.mu.Unlock()

	return nil
}

// Render executes a named template with the given data.
func (r *TemplateRegistry) Render(name string, data any) (RenderedEmail, error) {
	r.mu.RLock()
	ct, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return RenderedEmail{}, notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var out RenderedEmail
	var buf bytes.Buffer

	if err := ct.subject.Execute(&buf, data); err != nil {
		return RenderedEmail{}, notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	out.Subject = buf.String()

	if ct.text != nil {
		buf.Reset()
		if err := ct.text.Execute(&buf, data); err != nil {
			return RenderedEmail{}, notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
		}
		out.TextBody = buf.String()
	}

	if ct.html != nil {
		buf.Reset()
		if err := ct.html.Execute(&buf, data); err != nil {
			return RenderedEmail{}, notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
		}
		out.HTMLBody = buf.String()
	}

	return out, nil
}
