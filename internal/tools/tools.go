// Package tools wraps the external image tools the archive shells out to:
// ImageMagick's identify for image dimensions and convert for cropping.
//
// Both wrappers report failures as *errors.ToolError, so callers can tell a
// tool problem from a data problem with errors.Is(err, errors.ErrToolFailure).
package tools

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
)

const (
	// DefaultIdentify is the image probe executable.
	DefaultIdentify = "identify"
	// DefaultConvert is the image cropping executable.
	DefaultConvert = "convert"
)

// Identify probes image dimensions with ImageMagick identify.
type Identify struct {
	Binary string
	// Timeout bounds one invocation; zero means no bound beyond ctx.
	Timeout time.Duration
}

// Probe returns the pixel dimensions of the first frame of the image at path.
func (t Identify) Probe(ctx context.Context, path string) (int, int, error) {
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = DefaultIdentify
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, 0, &errors.ToolError{Tool: binary, Target: path, Err: fmt.Errorf("empty path")}
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	// [0] selects the first frame of multi-page TIFFs
	cmd := exec.CommandContext(ctx, binary, "-format", "%w %h\n", path+"[0]")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, &errors.ToolError{Tool: binary, Target: path, Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))}
	}

	width, height, err := parseDimensions(string(output))
	if err != nil {
		return 0, 0, &errors.ToolError{Tool: binary, Target: path, Err: err}
	}
	return width, height, nil
}

// parseDimensions reads "<width> <height>" from the first output line.
func parseDimensions(output string) (int, int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected output %q", line)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected width %q", fields[0])
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected height %q", fields[1])
	}
	return width, height, nil
}

// Convert crops images with ImageMagick convert.
type Convert struct {
	Binary string
}

// Crop writes the rect region of src to dst, creating dst's directory.
func (t Convert) Crop(ctx context.Context, src, dst string, rect image.Rectangle) error {
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = DefaultConvert
	}
	if rect.Empty() {
		return &errors.ToolError{Tool: binary, Target: src, Err: fmt.Errorf("empty crop rectangle %v", rect)}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(dst), err)
	}

	geometry := fmt.Sprintf("%dx%d+%d+%d", rect.Dx(), rect.Dy(), rect.Min.X, rect.Min.Y)
	cmd := exec.CommandContext(ctx, binary, src, "-crop", geometry, "+repage", dst)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &errors.ToolError{Tool: binary, Target: src, Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))}
	}
	return nil
}
