// Package templating renders message bodies with Liquid.
//
// Stored templates are validated with Parse when created and rendered at
// send time with the sender, subject and date in scope. Plain text without
// Liquid markup renders unchanged.
package templating

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
	"github.com/osteele/liquid"
)

// Renderer compiles and caches Liquid templates.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // cache key -> *liquid.Template
}

// NewRenderer creates a renderer with the console's custom filters.
func NewRenderer() *Renderer {
	r := &Renderer{engine: liquid.NewEngine()}
	r.registerFilters()
	return r
}

func (r *Renderer) registerFilters() {
	// {{ first_name | default: "Friend" }}
	r.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		if s := fmt.Sprintf("%v", value); s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	// {{ sender | email_domain }}
	r.engine.RegisterFilter("email_domain", func(s string) string {
		if i := strings.LastIndex(s, "@"); i >= 0 {
			return s[i+1:]
		}
		return ""
	})

	// {{ sender | mask_email }}
	r.engine.RegisterFilter("mask_email", func(s string) string {
		return logger.RedactEmail(s)
	})

	// {{ name | titlecase }}
	r.engine.RegisterFilter("titlecase", func(s string) string {
		words := strings.Fields(strings.ToLower(s))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	})
}

// Parse compiles a template string and reports syntax errors as
// domain.ErrInvalid.
func (r *Renderer) Parse(content string) error {
	if _, err := r.engine.ParseString(content); err != nil {
		return fmt.Errorf("%w: template syntax: %v", domain.ErrInvalid, err)
	}
	return nil
}

// Render processes content with vars. A non-empty cacheKey reuses the
// compiled template across calls, so the key must change with the content.
func (r *Renderer) Render(cacheKey, content string, vars map[string]interface{}) (string, error) {
	var tpl *liquid.Template
	if cacheKey != "" {
		if cached, ok := r.cache.Load(cacheKey); ok {
			tpl = cached.(*liquid.Template)
		}
	}
	if tpl == nil {
		parsed, err := r.engine.ParseString(content)
		if err != nil {
			return "", fmt.Errorf("%w: template syntax: %v", domain.ErrInvalid, err)
		}
		tpl = parsed
		if cacheKey != "" {
			r.cache.Store(cacheKey, tpl)
		}
	}

	out, err := tpl.RenderString(vars)
	if err != nil {
		return "", fmt.Errorf("%w: render template: %v", domain.ErrInvalid, err)
	}
	return out, nil
}
