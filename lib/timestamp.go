package worldback

import (
	"bytes"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// Default suffix of a world moved aside, YYYY-MM-DD-HH-MM-SS in local time
const DefaultAsideSuffix = `{{ .Now | date "2006-01-02-15-04-05" }}`

// Timestamper evaluating a template with sprig functions. The template
// receives .Now (a time.Time) and .LevelName.
type TemplateTimestamper struct {
	tpl       *template.Template
	levelName string
	now       func() time.Time
}

// now may be nil, in which case time.Now is used
func NewTemplateTimestamper(suffix, levelName string, now func() time.Time) (*TemplateTimestamper, error) {
	if suffix == "" {
		suffix = DefaultAsideSuffix
	}
	if now == nil {
		now = time.Now
	}

	tpl, err := template.New("aside-suffix").Funcs(sprig.TxtFuncMap()).Parse(suffix)
	if err != nil {
		return nil, err
	}

	return &TemplateTimestamper{tpl: tpl, levelName: levelName, now: now}, nil
}

// Part of Timestamper interface
func (t *TemplateTimestamper) Timestamp() (string, error) {
	buf := bytes.NewBuffer(nil)
	err := t.tpl.Execute(buf, map[string]interface{}{
		"Now":       t.now(),
		"LevelName": t.levelName,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
