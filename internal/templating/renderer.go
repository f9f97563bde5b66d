package templating

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/orderhub/orderhub-backend/pkg/config"
)

// Renderer turns a structured order payload into localized subject and body
// text. It performs no dispatching itself.
type Renderer interface {
	Render(payload OrderPayload, lang string) (*Rendered, error)
}

type templateSet struct {
	subject *template.Template
	body    *template.Template
}

type renderer struct {
	matcher     language.Matcher
	tags        []language.Tag
	sets        map[string]templateSet
	defaultLang string
}

// NewRenderer parses all built-in templates and builds the language matcher.
func NewRenderer(cfg config.CheckoutConfig) (Renderer, error) {
	funcs := template.FuncMap{
		"money": formatMoney,
		"date":  formatDate,
	}

	sets := make(map[string]templateSet, len(builtinTemplates))
	var tags []language.Tag
	for lang, src := range builtinTemplates {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid template language %q: %w", lang, err)
		}
		subject, err := template.New("subject").Funcs(funcs).Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject template: %w", lang, err)
		}
		body, err := template.New("body").Funcs(funcs).Parse(src.body)
		if err != nil {
			return nil, fmt.Errorf("parse %s body template: %w", lang, err)
		}
		sets[tag.String()] = templateSet{subject: subject, body: body}
		tags = append(tags, tag)
	}

	defaultLang := strings.TrimSpace(cfg.DefaultLanguage)
	if defaultLang == "" {
		defaultLang = "en"
	}
	if _, ok := sets[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no template", defaultLang)
	}

	// The default language leads the matcher so unknown tags fall back to it.
	ordered := make([]language.Tag, 0, len(tags))
	ordered = append(ordered, language.MustParse(defaultLang))
	for _, tag := range tags {
		if tag.String() != defaultLang {
			ordered = append(ordered, tag)
		}
	}

	return &renderer{
		matcher:     language.NewMatcher(ordered),
		tags:        ordered,
		sets:        sets,
		defaultLang: defaultLang,
	}, nil
}

func (r *renderer) Render(payload OrderPayload, lang string) (*Rendered, error) {
	resolved := r.resolveLanguage(lang)
	set := r.sets[resolved]

	var subject strings.Builder
	if err := set.subject.Execute(&subject, payload); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	var body strings.Builder
	if err := set.body.Execute(&body, payload); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	return &Rendered{
		Subject:  strings.TrimSpace(subject.String()),
		Body:     strings.TrimRight(body.String(), "\n") + "\n",
		Language: resolved,
	}, nil
}

func (r *renderer) resolveLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return r.defaultLang
	}
	parsed, err := language.Parse(lang)
	if err != nil {
		return r.defaultLang
	}
	_, idx, _ := r.matcher.Match(parsed)
	return r.tags[idx].String()
}

func formatMoney(v any) string {
	switch d := v.(type) {
	case *decimal.Decimal:
		if d == nil {
			return "-"
		}
		return d.StringFixed(2)
	case decimal.Decimal:
		return d.StringFixed(2)
	default:
		return "-"
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}
