package ocr

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/9endu/Dealicious/internal/domain"
)

// Tesseract recognizes text by piping the image through the tesseract CLI.
type Tesseract struct {
	binPath string
	timeout time.Duration
}

// NewTesseract creates a Tesseract recognizer. If binPath is empty, "tesseract" is used.
// A zero timeout leaves cancellation to the caller's context.
func NewTesseract(binPath string, timeout time.Duration) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Tesseract{binPath: binPath, timeout: timeout}
}

// Recognize runs `tesseract stdin stdout -l <language>` and returns stdout.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if len(image) == 0 {
		return "", domain.ErrEmptyImage
	}
	if language == "" {
		language = DefaultLanguage
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.binPath, "stdin", "stdout", "-l", language)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return "", eris.Wrapf(domain.ErrOCRUnavailable, "ocr: %s not found", t.binPath)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", eris.Wrap(ctxErr, "ocr: tesseract interrupted")
		}
		return "", eris.Wrapf(err, "ocr: tesseract failed: %s", strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
