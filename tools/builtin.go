package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"teros/model"
)

// MaxReadFileBytes caps the size of files returned by ReadFile.
const MaxReadFileBytes = 10 << 20

type clockInput struct {
	Zone string `json:"zone,omitempty" jsonschema:"description=IANA time zone such as Europe/Zurich. Defaults to local time."`
}

type clockOutput struct {
	Time    string `json:"time"`
	Zone    string `json:"zone"`
	Weekday string `json:"weekday"`
}

// GetTime returns a get_time tool reporting the current time of now.
func GetTime(now func() time.Time) (Definition, error) {
	return NewFunction("get_time", "Get the current date and time",
		func(_ context.Context, in clockInput) (clockOutput, error) {
			t := now()
			if in.Zone != "" {
				loc, err := time.LoadLocation(in.Zone)
				if err != nil {
					return clockOutput{}, fmt.Errorf("unknown time zone %q", in.Zone)
				}
				t = t.In(loc)
			}
			zone, _ := t.Zone()
			return clockOutput{
				Time:    t.Format(time.RFC3339),
				Zone:    zone,
				Weekday: t.Weekday().String(),
			}, nil
		})
}

type readFileInput struct {
	Path string `json:"path" jsonschema:"required,description=Path of the file to read, relative to the working directory"`
}

// ReadFile returns a read_file tool that hands a file below root to the
// model as an attachment. Paths that resolve outside root, including
// through symlinks, are refused.
func ReadFile(root string) (Definition, error) {
	base, err := filepath.Abs(root)
	if err != nil {
		return Definition{}, fmt.Errorf("invalid read_file root %q: %w", root, err)
	}
	if base, err = filepath.EvalSymlinks(base); err != nil {
		return Definition{}, fmt.Errorf("invalid read_file root %q: %w", root, err)
	}

	return NewFunction("read_file", "Read a local file and attach it for analysis",
		func(_ context.Context, in readFileInput) (*model.ToolCallResult, error) {
			if in.Path == "" {
				return nil, fmt.Errorf("path is required")
			}
			path, err := confine(base, in.Path)
			if err != nil {
				return nil, err
			}

			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory", in.Path)
			}
			if info.Size() > MaxReadFileBytes {
				return nil, fmt.Errorf("%s is too large (%d bytes, limit %d)", in.Path, info.Size(), MaxReadFileBytes)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}

			res := model.NewToolCallResult("read_file", map[string]any{
				"path":  in.Path,
				"bytes": len(data),
			})
			return res.WithFiles(model.FileAttachment{Filename: filepath.Base(path), Data: data}), nil
		})
}

// confine resolves p against base and returns the real path, or an error
// when it lies outside base.
func confine(base, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s does not exist", p)
		}
		return "", err
	}
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", p, base)
	}
	return resolved, nil
}
