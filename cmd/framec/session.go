package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Hackzzila/FrameUi/internal/config"
	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/sass"
	"github.com/Hackzzila/FrameUi/pkg/frame"
)

// errFailed is returned after the diagnostics of a failed compile were shown
var errFailed = errors.New("compilation failed")

type globalFlags struct {
	logLevel    string
	sass        string
	diagnostics string
}

// session is the configuration and output of one command run
type session struct {
	cfg    config.Config
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer
}

func (f *globalFlags) session(cmd *cobra.Command, docPath string) (*session, error) {
	cfg, err := config.Load(filepath.Dir(docPath))
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.sass != "" {
		cfg.SassBinary = f.sass
	}
	if f.diagnostics != "" {
		cfg.MinLevel = f.diagnostics
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		log:    newLogger(lvl, cmd.ErrOrStderr()),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

func newLogger(level zapcore.Level, w io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)).Named("framec")
}

func (s *session) options() []frame.Option {
	return []frame.Option{
		frame.WithLogger(s.log),
		frame.WithBridge(sass.NewCLIBridge(s.cfg.SassBinary, s.log, s.cfg.SassLoadPaths...)),
	}
}

// compile compiles the markup at path and prints its diagnostics
func (s *session) compile(path string) (*frame.Document, error) {
	c := diag.NewCollector(nil)
	doc, _, err := frame.Compile(path, append(s.options(), frame.WithCollector(c))...)
	printDiagnostics(s.errOut, c, minLevel(s.cfg.MinLevel))
	if err != nil {
		s.log.Debug("compile failed", zap.Error(err))
		return nil, errFailed
	}
	return doc, nil
}

// open loads a compiled document, or compiles markup
func (s *session) open(path string) (*frame.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	header := make([]byte, 5)
	n, _ := io.ReadFull(f, header)
	if !frame.IsCompiled(header[:n]) {
		return s.compile(path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	doc, err := frame.LoadFrom(f, s.options()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

func minLevel(s string) diag.Level {
	switch s {
	case "error":
		return diag.Error
	case "warn":
		return diag.Warn
	}
	return diag.Info
}
