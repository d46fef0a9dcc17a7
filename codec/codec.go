// Package codec is the public surface: a Serializer bundles a type
// registry with a resolved set of options and exposes the four
// operations spec.md §6 names — Stringify/Parse for the tree form,
// Serialize/Deserialize for the identity-preserving graph form — plus
// AddType/AddTypeFunc to register custom types before first use.
package codec

import (
	"encoding/json"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/graph"
	"github.com/tessellate/vgraph/internal/fingerprint"
	"github.com/tessellate/vgraph/internal/limits"
	"github.com/tessellate/vgraph/internal/schema"
	"github.com/tessellate/vgraph/regexsafe"
	"github.com/tessellate/vgraph/registry"
	"github.com/tessellate/vgraph/tree"
	"github.com/tessellate/vgraph/values"
)

// Config holds every knob spec.md §6's configuration table names, plus
// StrictEnvelopeSchema (see WithStrictEnvelopeSchema). Build one via
// New(opts...) rather than populating it directly; the zero value of
// most fields already means "use the default," but MaxDepth's zero
// value rejects every value whose contents are visited (see
// limits.AssertDepth), so New seeds it to -1 ("use the default") before
// applying options.
type Config struct {
	Pretty                 bool
	MaxDepth               int
	AllowedTypes           map[string]bool
	SymbolPolicy           values.SymbolPolicy
	MaxRegExpPatternLength int
	AllowUnsafeRegExp      bool
	StrictEnvelopeSchema   bool
	UnsafeKeys             map[string]bool
}

// Option configures a Serializer at construction time.
type Option func(*Config)

// WithPretty indents Stringify/Serialize output with two spaces.
func WithPretty(pretty bool) Option {
	return func(c *Config) { c.Pretty = pretty }
}

// WithMaxDepth bounds recursion depth in both directions. Negative
// values other than limits.Unbounded fall back to limits.DefaultMaxDepth
// (1000); limits.Unbounded disables the bound entirely.
func WithMaxDepth(max int) Option {
	return func(c *Config) { c.MaxDepth = max }
}

// WithAllowedTypes restricts which registered type ids Parse/Deserialize
// will accept. Calling it with no ids is a no-op; to reject every custom
// type, pass an id set that excludes all of them rather than an empty
// call.
func WithAllowedTypes(ids ...string) Option {
	return func(c *Config) {
		if len(ids) == 0 {
			return
		}
		allowed := make(map[string]bool, len(ids))
		for _, id := range ids {
			allowed[id] = true
		}
		c.AllowedTypes = allowed
	}
}

// WithSymbolPolicy controls which Symbol payload shapes deserialization
// accepts.
func WithSymbolPolicy(policy values.SymbolPolicy) Option {
	return func(c *Config) { c.SymbolPolicy = policy }
}

// WithMaxRegExpPatternLength caps the RegExp pattern length accepted on
// deserialize. Zero means regexsafe.DefaultMaxPatternLength (1024); a
// negative value disables the cap.
func WithMaxRegExpPatternLength(max int) Option {
	return func(c *Config) { c.MaxRegExpPatternLength = max }
}

// WithAllowUnsafeRegExp bypasses the catastrophic-backtracking heuristic
// (the pattern-length cap still applies unless separately disabled).
func WithAllowUnsafeRegExp(allow bool) Option {
	return func(c *Config) { c.AllowUnsafeRegExp = allow }
}

// WithStrictEnvelopeSchema validates a graph envelope against its fixed
// JSON Schema before Deserialize's own shape-sniff walks it. Off by
// default: the schema check is an extra defense against malformed
// envelopes from untrusted sources, not something every caller needs.
func WithStrictEnvelopeSchema(strict bool) Option {
	return func(c *Config) { c.StrictEnvelopeSchema = strict }
}

// WithUnsafeKeys replaces the default prototype-pollution key set
// ("__proto__", "constructor", "prototype") filtered from decoded
// objects.
func WithUnsafeKeys(keys ...string) Option {
	return func(c *Config) {
		unsafe := make(map[string]bool, len(keys))
		for _, k := range keys {
			unsafe[k] = true
		}
		c.UnsafeKeys = unsafe
	}
}

func defaultConfig() Config {
	return Config{MaxDepth: -1}
}

// Serializer bundles a Config with the type Registry it governs.
// A Serializer is safe for concurrent use: Stringify/Parse/Serialize/
// Deserialize touch no shared mutable state beyond the Registry, which
// is itself safe for concurrent reads and Add calls (spec.md's
// concurrency section: "no shared mutable state across calls").
type Serializer struct {
	cfg      Config
	registry *registry.Registry
}

// New returns a Serializer seeded with the built-in type table and
// configured by opts.
func New(opts ...Option) *Serializer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := registry.New()
	reg.SymbolPolicy = cfg.SymbolPolicy
	reg.RegExpConfig = regexsafe.Config{
		MaxPatternLength: cfg.MaxRegExpPatternLength,
		AllowUnsafe:      cfg.AllowUnsafeRegExp,
	}

	return &Serializer{cfg: cfg, registry: reg}
}

// AddType registers a custom TypeDefinition. It fails if def is invalid
// or its id collides with an existing registration, built-ins included.
func (s *Serializer) AddType(def *registry.TypeDefinition) error {
	return s.registry.Add(def)
}

// AddTypeFunc registers a value-strategy type by name and factory, the
// convenience overload spec.md §6 calls addType(name, factory): factory
// produces a zero instance implementing registry.NamedValue, whose
// TypeName must return name.
func (s *Serializer) AddTypeFunc(name string, factory func() registry.NamedValue) error {
	return s.registry.AddFunc(name, factory)
}

// Stringify renders v as a tree-form JSON document (no identity
// preservation; cycles fail with CircularInTreeModeError).
func (s *Serializer) Stringify(v any) (string, error) {
	return tree.Stringify(v, s.treeConfig())
}

// Parse reconstructs a value from a tree-form document.
func (s *Serializer) Parse(text string) (any, error) {
	return tree.Parse(text, s.treeConfig())
}

// Serialize renders v as a graph-form document: an envelope that
// preserves identity and supports cycles, collapsing to bare tree form
// when v has no identity-bearing contents.
func (s *Serializer) Serialize(v any) (string, error) {
	return graph.Serialize(v, s.graphConfig())
}

// Deserialize reconstructs a value from a graph-form document, falling
// back to the tree-form decode path when text isn't envelope-shaped.
// When WithStrictEnvelopeSchema is set, an envelope-shaped document is
// validated against the fixed envelope schema first.
func (s *Serializer) Deserialize(text string) (any, error) {
	if s.cfg.StrictEnvelopeSchema {
		var probe any
		if err := json.Unmarshal([]byte(text), &probe); err != nil {
			return nil, &codecerr.InvalidJSONError{Err: err}
		}
		if envelope, ok := probe.(map[string]any); ok && envelope["__graph"] == true {
			if err := schema.ValidateEnvelope(probe); err != nil {
				return nil, err
			}
		}
	}
	return graph.Deserialize(text, s.graphConfig())
}

// Fingerprint returns a stable content hash of a decoded value, for
// deep round-trip assertions in tests or application-level change
// detection. It is a debug helper, never part of the wire format.
func (s *Serializer) Fingerprint(v any) (string, error) {
	return fingerprint.Fingerprint(v)
}

func (s *Serializer) treeConfig() tree.Config {
	return tree.Config{
		MaxDepth:     limits.ResolveMaxDepth(s.cfg.MaxDepth),
		UnsafeKeys:   s.cfg.UnsafeKeys,
		Pretty:       s.cfg.Pretty,
		Registry:     s.registry,
		AllowedTypes: s.cfg.AllowedTypes,
	}
}

func (s *Serializer) graphConfig() graph.Config {
	return graph.Config{
		MaxDepth:     limits.ResolveMaxDepth(s.cfg.MaxDepth),
		UnsafeKeys:   s.cfg.UnsafeKeys,
		Pretty:       s.cfg.Pretty,
		Registry:     s.registry,
		AllowedTypes: s.cfg.AllowedTypes,
	}
}
