package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Name}},</p>
{{template "body" .}}
<p>Mori</p>
</body></html>{{end}}`

var bodies = map[string]string{
	"set_password": `{{define "body"}}<p>An account has been created for you. Choose a password here:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in {{.Validity}}.</p>{{end}}`,
	"login_otp": `{{define "body"}}<p>Your login code is <b>{{.Code}}</b>.</p>
<p>It is valid for {{.Validity}}.</p>{{end}}`,
	"reset_otp": `{{define "body"}}<p>Someone asked to reset your password. Your code is <b>{{.Code}}</b>.</p>
<p>It is valid for {{.Validity}}. Ignore this email if it was not you.</p>{{end}}`,
}

type data struct {
	Name     string
	Link     string
	Code     string
	Validity string
}

// Renderer turns flow data into HTML messages. Templates are parsed once.
type Renderer struct {
	from string
	tmpl map[string]*template.Template
}

func NewRenderer(from string) (*Renderer, error) {
	r := &Renderer{from: from, tmpl: make(map[string]*template.Template, len(bodies))}
	for name, body := range bodies {
		t, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.tmpl[name] = t
	}
	return r, nil
}

func (r *Renderer) SetPassword(to, name, link string, validity time.Duration) (Message, error) {
	return r.render("set_password", to, "Set your Mori password", data{Name: name, Link: link, Validity: humanize(validity)})
}

func (r *Renderer) LoginOTP(to, name, code string, validity time.Duration) (Message, error) {
	return r.render("login_otp", to, "Your Mori login code", data{Name: name, Code: code, Validity: humanize(validity)})
}

func (r *Renderer) ResetOTP(to, name, code string, validity time.Duration) (Message, error) {
	return r.render("reset_otp", to, "Reset your Mori password", data{Name: name, Code: code, Validity: humanize(validity)})
}

func (r *Renderer) render(name, to, subject string, d data) (Message, error) {
	var buf bytes.Buffer
	if err := r.tmpl[name].ExecuteTemplate(&buf, "layout", d); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{From: r.from, To: to, Subject: subject, HTML: buf.String()}, nil
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	}
	return d.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
