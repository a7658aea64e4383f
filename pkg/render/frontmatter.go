package render

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Meta is the optional YAML frontmatter of a template file.
//
//	---
//	subject: Welcome to {product}
//	layout: base
//	title: Welcome aboard
//	---
//
// `subject` is the default email subject when the request omits one,
// `layout` names a template to wrap the rendered body, and every other
// scalar key becomes a layout parameter.
type Meta struct {
	Subject string
	Layout  string
	Params  map[string]string
}

var frontmatterFence = []byte("---")

// splitFrontmatter separates the YAML frontmatter from the template
// body. Files without an opening fence have no metadata.
func splitFrontmatter(raw []byte) (Meta, string, error) {
	if !bytes.HasPrefix(raw, frontmatterFence) {
		return Meta{}, string(raw), nil
	}

	rest := bytes.TrimPrefix(raw, frontmatterFence)
	rest = bytes.TrimLeft(rest, "\r\n")

	end := bytes.Index(rest, frontmatterFence)
	if end < 0 {
		return Meta{}, "", fmt.Errorf("frontmatter: closing fence not found")
	}

	head := rest[:end]
	body := rest[end+len(frontmatterFence):]
	body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r\n")), []byte("\n"))

	var fields map[string]any
	if err := yaml.Unmarshal(head, &fields); err != nil {
		return Meta{}, "", fmt.Errorf("frontmatter: %w", err)
	}

	meta := Meta{Params: make(map[string]string)}
	for k, v := range fields {
		s, ok := scalarString(v)
		if !ok {
			return Meta{}, "", fmt.Errorf("frontmatter: %q must be a scalar", k)
		}
		switch k {
		case "subject":
			meta.Subject = s
		case "layout":
			meta.Layout = s
		default:
			meta.Params[k] = s
		}
	}
	return meta, string(body), nil
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}
