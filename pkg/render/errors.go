package render

import "errors"

var (
	// ErrLoad indicates the template directory could not be loaded.
	ErrLoad = errors.New("failed to load templates")

	// ErrParse indicates a template file has invalid syntax.
	ErrParse = errors.New("template syntax error")

	// ErrTemplateNotFound indicates no template is registered under the requested name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrUndefinedVariable indicates a template referenced a variable
	// absent from the request scope (strict mode).
	ErrUndefinedVariable = errors.New("undefined template variable")

	// ErrRender indicates rendering failed for a reason other than a
	// missing variable, such as interpolating a nested mapping or
	// exceeding the partial recursion limit.
	ErrRender = errors.New("failed to render template")
)
