package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ConverterError reports a failed external conversion together with the
// converter's own diagnostic output.
type ConverterError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *ConverterError) Error() string {
	msg := fmt.Sprintf("pdf converter failed (exit %d)", e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ConverterError) Unwrap() error { return e.Err }

// ExitStatus reports the converter's exit code, -1 when it did not exit.
func (e *ConverterError) ExitStatus() int { return e.ExitCode }

// ExecConverter runs an external HTML to PDF program as
// "<Bin> [Args...] <input.html> <output.pdf>".
type ExecConverter struct {
	Bin     string
	Args    []string
	TempDir string
	Timeout time.Duration
}

func NewExecConverter(bin string, args []string, timeout time.Duration) *ExecConverter {
	return &ExecConverter{Bin: bin, Args: args, Timeout: timeout}
}

// RenderHTMLToPDF writes html to a temp file, runs the converter and returns
// the produced PDF. Both temp files are removed on every return path.
func (c *ExecConverter) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	in, err := os.CreateTemp(c.TempDir, "portfolio-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp html: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.WriteString(html); err != nil {
		in.Close()
		return nil, fmt.Errorf("write temp html: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("close temp html: %w", err)
	}

	out, err := os.CreateTemp(c.TempDir, "portfolio-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp pdf: %w", err)
	}
	defer os.Remove(out.Name())
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close temp pdf: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, c.Args...), in.Name(), out.Name())
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	var diag bytes.Buffer
	cmd.Stdout = &diag
	cmd.Stderr = &diag
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &ConverterError{ExitCode: code, Output: diag.String(), Err: err}
	}

	pdf, err := os.ReadFile(out.Name())
	if err != nil {
		return nil, fmt.Errorf("read converter output: %w", err)
	}
	if len(pdf) == 0 {
		return nil, &ConverterError{Output: diag.String(), Err: errors.New("converter produced no output")}
	}
	return pdf, nil
}
