package frame

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/expr"
	"github.com/Hackzzila/FrameUi/internal/layout"
	"github.com/Hackzzila/FrameUi/internal/sass"
	"github.com/Hackzzila/FrameUi/internal/source"
)

// Option configures Compile and Load
type Option func(*options)

type options struct {
	log       *zap.Logger
	client    *http.Client
	bridge    sass.Bridge
	engine    layout.Engine
	evaluator expr.Evaluator
	scope     *expr.Scope
	collector *diag.Collector
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.bridge == nil {
		o.bridge = sass.NewCLIBridge("", o.log)
	}
	if o.engine == nil {
		o.engine = layout.NewFlowEngine()
	}
	if o.evaluator == nil {
		o.evaluator = expr.NewLang()
	}
	if o.scope == nil {
		o.scope = expr.NewScope()
	}
	return o
}

func (o *options) resolver() *source.Resolver {
	return source.New(o.client, o.log)
}

// WithLogger sets the logger used by the compiler and the document
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithHTTPClient sets the client used to fetch http and https sources
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithBridge sets the Sass preprocessor. The default runs the sass
// executable found on PATH.
func WithBridge(b sass.Bridge) Option {
	return func(o *options) { o.bridge = b }
}

// WithEngine sets the layout engine. Every node of the document gets one
// node of this engine.
func WithEngine(e layout.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithEvaluator sets the evaluator for dynamic attributes
func WithEvaluator(ev expr.Evaluator) Option {
	return func(o *options) { o.evaluator = ev }
}

// WithScope shares a variable scope with the document
func WithScope(s *expr.Scope) Option {
	return func(o *options) { o.scope = s }
}

// WithCollector makes Compile report to c instead of a new collector that
// logs through the configured logger
func WithCollector(c *diag.Collector) Option {
	return func(o *options) { o.collector = c }
}
