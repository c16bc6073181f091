package web

import (
	"html/template"
	"strings"
)

var templateFuncs = template.FuncMap{
	"placeholder": func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	},
}
