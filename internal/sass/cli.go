package sass

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CLIBridge runs the dart-sass command line compiler, feeding the source on
// stdin and reading CSS with an embedded source map from stdout
type CLIBridge struct {
	binary    string
	loadPaths []string
	log       *zap.Logger
}

// NewCLIBridge creates a bridge for the given sass executable ("sass" when
// empty). The executable is looked up on first use. loadPaths are searched
// by @use and @import after the directory of the input.
func NewCLIBridge(binary string, log *zap.Logger, loadPaths ...string) *CLIBridge {
	if binary == "" {
		binary = "sass"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CLIBridge{binary: binary, loadPaths: loadPaths, log: log}
}

func (b *CLIBridge) args(in Input) []string {
	args := []string{"--stdin", "--embed-source-map", "--embed-sources", "--no-unicode", "--no-color"}
	if in.Indented {
		args = append(args, "--indented")
	}
	if in.Path != "" {
		args = append(args, "--load-path", filepath.Dir(in.Path))
	}
	for _, dir := range b.loadPaths {
		args = append(args, "--load-path", dir)
	}
	return args
}

// Compile pipes the source through the sass binary. Failures reported by
// sass come back as *Error.
func (b *CLIBridge) Compile(in Input) (*Output, error) {
	bin, err := exec.LookPath(b.binary)
	if err != nil {
		return nil, fmt.Errorf("failed to find sass: %w", err)
	}
	cmd := exec.Command(bin, b.args(in)...)
	cmd.Stdin = strings.NewReader(in.Source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.log.Debug("running sass", zap.String("binary", bin), zap.String("input", in.Path), zap.Bool("indented", in.Indented))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if serr := parseError(stderr.String(), in.Path); serr != nil {
				return nil, serr
			}
		}
		return nil, fmt.Errorf("sass failed: %w\n%s", err, stderr.String())
	}

	css, smap, err := splitSourceMap(stdout.String())
	if err != nil {
		return nil, err
	}
	return &Output{CSS: css, SourceMap: smap}, nil
}

var traceLine = regexp.MustCompile(`^\s+(\S+)\s+(\d+):(\d+)\s+`)

// parseError reads the first error of dart-sass stderr output:
//
//	Error: expected ";".
//	  ,
//	2 |   width: 10px
//	  |              ^
//	  '
//	  - 2:14  root stylesheet
//
// A "-" file is the stdin input.
func parseError(stderr, input string) *Error {
	lines := strings.Split(strings.ReplaceAll(stderr, "\r\n", "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "Error: ") {
		return nil
	}
	e := &Error{Message: strings.TrimPrefix(lines[0], "Error: ")}
	for _, l := range lines[1:] {
		m := traceLine.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		e.File = m[1]
		if e.File == "-" {
			e.File = input
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		e.Line, e.Column = line-1, col-1
		break
	}
	return e
}

const mapMarker = "/*# sourceMappingURL="

// splitSourceMap cuts the trailing source map comment off the CSS and
// decodes its data URL
func splitSourceMap(out string) (string, []byte, error) {
	i := strings.LastIndex(out, mapMarker)
	if i < 0 {
		return out, nil, errors.New("sass output has no source map")
	}
	css := strings.TrimRight(out[:i], " \t\r\n")
	ref := strings.TrimSpace(out[i+len(mapMarker):])
	ref = strings.TrimSpace(strings.TrimSuffix(ref, "*/"))

	if !strings.HasPrefix(ref, "data:") {
		return css, nil, fmt.Errorf("sass source map is not embedded: %s", ref)
	}
	meta, data, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return css, nil, errors.New("malformed source map data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return css, nil, fmt.Errorf("decoding source map: %w", err)
		}
		return css, b, nil
	}
	s, err := url.PathUnescape(data)
	if err != nil {
		return css, nil, fmt.Errorf("decoding source map: %w", err)
	}
	return css, []byte(s), nil
}
