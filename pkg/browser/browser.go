// Package browser opens repository links in the user's browser.
package browser

import (
	"fmt"
	"io"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
)

// Opener opens links with the system browser.
type Opener struct {
	open func(string) error
}

// NewOpener returns an Opener. Anything the browser launcher prints is
// discarded so it cannot disturb an interactive terminal.
func NewOpener() *Opener {
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	return &Opener{open: pkgbrowser.OpenURL}
}

// Open validates rawURL and hands it to the system browser. Only http and
// https links are opened.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid browse link %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme", rawURL)
	}
	if err := o.open(u.String()); err != nil {
		return fmt.Errorf("failed to open %s: %w", rawURL, err)
	}
	return nil
}
