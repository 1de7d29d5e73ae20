// Package templates embeds the built-in portfolio and resume templates. Each
// template lives in its own directory as template.html plus styles.css.
package templates

import "embed"

//go:embed */template.html */styles.css
var FS embed.FS
