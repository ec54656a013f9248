// Package locale renders the few user-facing strings the service writes into
// topics. Catalogs are YAML files embedded at build time; a leaf is either a
// plain string or a map of plural forms (one, few, many, other).
package locale

import (
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

const DefaultLocale = "en"

//go:embed catalogs/*.yaml
var catalogFS embed.FS

type Translator struct {
	locale   string
	catalogs map[string]map[string]any
}

// New loads every embedded catalog. An unknown locale falls back to DefaultLocale.
func New(locale string) (*Translator, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]any, len(entries))
	for _, entry := range entries {
		data, err := catalogFS.ReadFile(path.Join("catalogs", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", entry.Name(), err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", entry.Name(), err)
		}
		catalogs[strings.TrimSuffix(entry.Name(), ".yaml")] = flatten("", tree)
	}

	if _, ok := catalogs[locale]; !ok {
		locale = DefaultLocale
	}
	return &Translator{locale: locale, catalogs: catalogs}, nil
}

func (t *Translator) Locale() string {
	return t.locale
}

// T renders key with vars substituted for %{name} placeholders. A "count" var
// selects the plural form. A missing key renders as the key itself.
func (t *Translator) T(key string, vars map[string]any) string {
	leaf, ok := t.catalogs[t.locale][key]
	if !ok {
		leaf, ok = t.catalogs[DefaultLocale][key]
		if !ok {
			return key
		}
	}

	var text string
	switch v := leaf.(type) {
	case string:
		text = v
	case map[string]string:
		text = pluralForm(t.locale, v, vars["count"])
	}
	return interpolate(text, vars)
}

func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch node := v.(type) {
		case string:
			out[key] = node
		case map[interface{}]interface{}:
			if forms, ok := asPluralForms(node); ok {
				out[key] = forms
				continue
			}
			for ck, cv := range flatten(key, stringKeys(node)) {
				out[ck] = cv
			}
		}
	}
	return out
}

var pluralCategories = map[string]bool{"zero": true, "one": true, "few": true, "many": true, "other": true}

func asPluralForms(node map[interface{}]interface{}) (map[string]string, bool) {
	forms := make(map[string]string, len(node))
	for k, v := range node {
		ks, ok := k.(string)
		if !ok || !pluralCategories[ks] {
			return nil, false
		}
		vs, ok := v.(string)
		if !ok {
			return nil, false
		}
		forms[ks] = vs
	}
	_, hasOther := forms["other"]
	return forms, hasOther
}

func stringKeys(node map[interface{}]interface{}) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[fmt.Sprint(k)] = v
	}
	return out
}

func pluralForm(locale string, forms map[string]string, count any) string {
	n, ok := count.(int)
	if !ok {
		return forms["other"]
	}
	if text, ok := forms[pluralCategory(locale, n)]; ok {
		return text
	}
	return forms["other"]
}

// pluralCategory implements the CLDR cardinal rules for the shipped locales.
func pluralCategory(locale string, n int) string {
	switch locale {
	case "ru":
		mod10, mod100 := n%10, n%100
		switch {
		case mod10 == 1 && mod100 != 11:
			return "one"
		case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
			return "few"
		default:
			return "many"
		}
	default:
		if n == 1 {
			return "one"
		}
		return "other"
	}
}

func interpolate(text string, vars map[string]any) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, v := range vars {
		var s string
		switch val := v.(type) {
		case int:
			s = strconv.Itoa(val)
		default:
			s = fmt.Sprint(val)
		}
		pairs = append(pairs, "%{"+name+"}", s)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
