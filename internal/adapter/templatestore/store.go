// Package templatestore loads named templates and their stylesheets. A
// template named "modern" is the pair modern/template.html and
// modern/styles.css under the store's root.
package templatestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

const (
	templateFile   = "template.html"
	stylesheetFile = "styles.css"
)

var (
	ErrNotFound    = errors.New("template not found")
	ErrInvalidName = errors.New("invalid template name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Store is a source of templates. A missing stylesheet is not an error; the
// template is then served unstyled.
type Store interface {
	Template(ctx context.Context, name string) (string, error)
	Stylesheet(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
}

func checkName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func objectPath(name, file string) string {
	return name + "/" + file
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
