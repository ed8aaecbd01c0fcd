package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultRecordCommand is SoX's recording front end.
const DefaultRecordCommand = "rec"

// soxArgs records 16 kHz mono WAV to stdout, starting at the first sound and
// stopping after two seconds of silence.
var soxArgs = []string{
	"-q", "-t", "wav", "-c", "1", "-r", "16000", "-",
	"silence", "1", "0.1", "3%", "1", "2.0", "3%",
}

// SoxCapturer records through the SoX command line.
type SoxCapturer struct {
	command string
}

// NewSoxCapturer uses command, or DefaultRecordCommand when empty.
func NewSoxCapturer(command string) *SoxCapturer {
	if command == "" {
		command = DefaultRecordCommand
	}
	return &SoxCapturer{command: command}
}

// Capture runs the recorder and returns the WAV bytes.
func (c *SoxCapturer) Capture(ctx context.Context) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, soxArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", c.command, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", c.command, err)
	}
	return stdout.Bytes(), nil
}

// Available reports whether the recorder is on PATH.
func (c *SoxCapturer) Available() error {
	if _, err := exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%s not found on PATH", c.command)
	}
	return nil
}
