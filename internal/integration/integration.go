// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"fmt"
	"os/exec"
	"path/filepath"
	"text/template"
)

// Binary is the command the rendered script invokes.
const Binary = "diskinsight"

// ZshFzf contains the zsh shell integration script with fzf support.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Values are substituted into the script template.
type Values struct {
	// ZSH is the absolute path of the zsh interpreter.
	ZSH string
	// Binary is the diskinsight command to run.
	Binary string
}

// Render locates zsh and renders the integration script for it.
func Render() (string, error) {
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", fmt.Errorf("locating zsh: %w", err)
	}

	return RenderWith(Values{ZSH: filepath.ToSlash(zsh), Binary: Binary})
}

// RenderWith renders the integration script with the given values.
func RenderWith(values Values) (string, error) {
	tmpl, err := template.New("zsh-fzf").Option("missingkey=error").Parse(ZshFzf)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", err
	}

	return buf.String(), nil
}
