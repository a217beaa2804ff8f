package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

// pdfInstallHint names the package providing rsvg-convert per platform.
const pdfInstallHint = "pdf output requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin"

// CheckPDFSupport reports whether rsvg-convert is available. The
// returned error carries an installation hint.
func CheckPDFSupport() error {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return fmt.Errorf("%s", pdfInstallHint)
	}
	return nil
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
func ToPDF(svg []byte) ([]byte, error) {
	if err := CheckPDFSupport(); err != nil {
		return nil, err
	}

	cmd := exec.Command("rsvg-convert", "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
