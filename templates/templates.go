// Package templates embeds the HTML templates served by the web front-end.
package templates

import "embed"

//go:embed layouts/*.gohtml partials/*.gohtml pages/*.gohtml
var FS embed.FS
