// Package registry implements spec.md §4.1's Type Registry: the
// collection of built-in and user TypeDefinitions, predicate-based
// lookup for serialization, id-based lookup for deserialization (with
// allowlist enforcement and "did you mean" suggestions), and the
// Symbol/RegExp payload validation that gates a handful of built-ins'
// Deserialize step.
//
// The registry's match loop mirrors a dynamic-dispatch pattern: callers
// register predicates over an erased any value, first match wins in
// insertion order, and a predicate panicking counts as "no match" rather
// than aborting the whole lookup.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/internal/invariant"
	"github.com/tessellate/vgraph/regexsafe"
	"github.com/tessellate/vgraph/values"
)

// Strategy discriminates how a TypeDefinition's instances are encoded:
// inlined with no identity tracking, or node-backed with identity
// preserved across shared references and cycles.
type Strategy int

const (
	// StrategyValue inlines {__type, value} with no identity tracking.
	StrategyValue Strategy = iota
	// StrategyRef stores a Type node and preserves identity.
	StrategyRef
)

// TypeDefinition describes one custom or built-in type known to a
// Registry.
type TypeDefinition struct {
	// ID is the wire type tag. Must be non-empty and unique within a
	// registry.
	ID string
	// Is reports whether v is an instance of this type. Called during
	// Find; a panic is treated as "false".
	Is func(v any) bool
	// Serialize converts an instance into its JSON-compatible payload.
	Serialize func(v any) (any, error)
	// Deserialize converts a payload (already recursively deserialized)
	// back into an instance.
	Deserialize func(data any) (any, error)
	// Create optionally returns a zero-value placeholder instance, used
	// by the graph deserializer to close cycles through a Strategy=Ref
	// type before its payload has finished resolving. Nil means this
	// type cannot participate in a cycle that depends on its own
	// placeholder.
	Create func() any
	// Strategy is StrategyValue or StrategyRef.
	Strategy Strategy
}

// NamedValue is the interface AddFunc's convenience overload expects:
// types exposing a name, a JSON-shaped view of themselves, and a way to
// populate themselves back from that view.
type NamedValue interface {
	TypeName() string
	ToJSONValue() (any, error)
	FromJSONValue(data any) error
}

// Registry holds every TypeDefinition known to one Serializer, plus the
// Symbol/RegExp policy DeserializeType enforces.
type Registry struct {
	mu   sync.RWMutex
	defs []*TypeDefinition
	byID map[string]*TypeDefinition

	// SymbolPolicy and RegExpConfig gate DeserializeType's handling of
	// the built-in "Symbol" and "RegExp" ids. The owning Serializer sets
	// these from its Config before first use.
	SymbolPolicy values.SymbolPolicy
	RegExpConfig regexsafe.Config
}

// New returns a Registry seeded with spec.md §4.1's built-in table.
func New() *Registry {
	r := &Registry{byID: make(map[string]*TypeDefinition)}
	r.seedBuiltins()
	return r
}

// Add registers def. It fails if def is nil, its ID is empty, its Is
// predicate is nil, or its ID collides with an already-registered
// definition (built-ins included — built-ins cannot be replaced).
func (r *Registry) Add(def *TypeDefinition) error {
	if def == nil {
		return &codecerr.TypeRegistryError{Reason: "definition must not be nil"}
	}
	if def.ID == "" {
		return &codecerr.TypeRegistryError{Reason: "id must not be empty"}
	}
	if def.Is == nil {
		return &codecerr.TypeRegistryError{Reason: "is predicate must not be nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[def.ID]; exists {
		return &codecerr.TypeRegistryError{Reason: fmt.Sprintf("type id %q already registered", def.ID)}
	}
	r.byID[def.ID] = def
	r.defs = append(r.defs, def)
	invariant.Invariant(len(r.byID) == len(r.defs), "registry: byID and defs diverged, %d != %d", len(r.byID), len(r.defs))
	return nil
}

// AddFunc registers a value-strategy TypeDefinition for name, whose
// instances implement NamedValue and whose TypeName() returns name.
func (r *Registry) AddFunc(name string, factory func() NamedValue) error {
	if name == "" {
		return &codecerr.TypeRegistryError{Reason: "name must not be empty"}
	}
	if factory == nil {
		return &codecerr.TypeRegistryError{Reason: "factory must not be nil"}
	}
	return r.Add(&TypeDefinition{
		ID:       name,
		Strategy: StrategyValue,
		Is: func(v any) bool {
			nv, ok := v.(NamedValue)
			return ok && nv.TypeName() == name
		},
		Serialize: func(v any) (any, error) {
			return v.(NamedValue).ToJSONValue()
		},
		Deserialize: func(data any) (any, error) {
			inst := factory()
			if err := inst.FromJSONValue(data); err != nil {
				return nil, err
			}
			return inst, nil
		},
	})
}

// Find returns the first definition (insertion order) whose Is predicate
// matches value, skipping any id present in excluded. A definition whose
// Is predicate panics is treated as not matching.
func (r *Registry) Find(value any, excluded map[string]bool) *TypeDefinition {
	r.mu.RLock()
	defs := make([]*TypeDefinition, len(r.defs))
	copy(defs, r.defs)
	r.mu.RUnlock()

	for _, def := range defs {
		if excluded != nil && excluded[def.ID] {
			continue
		}
		if safeIs(def, value) {
			return def
		}
	}
	return nil
}

func safeIs(def *TypeDefinition, value any) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return def.Is(value)
}

// GetByID looks up id, enforcing allowedTypes (nil means allow every
// registered id). Both failure modes carry a fuzzy "did you mean"
// suggestion drawn from the candidate set that failure implies (the
// allowlist when TypeNotAllowed, every registered id when UnknownType).
func (r *Registry) GetByID(id string, allowedTypes map[string]bool) (*TypeDefinition, error) {
	r.mu.RLock()
	def, ok := r.byID[id]
	allIDs := r.idsLocked()
	r.mu.RUnlock()

	if allowedTypes != nil && !allowedTypes[id] {
		allowed := make([]string, 0, len(allowedTypes))
		for candidate := range allowedTypes {
			allowed = append(allowed, candidate)
		}
		return nil, &codecerr.TypeNotAllowedError{ID: id, Suggestion: suggest(id, allowed)}
	}
	if !ok {
		return nil, &codecerr.UnknownTypeError{ID: id, Suggestion: suggest(id, allIDs)}
	}
	return def, nil
}

func suggest(id string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	ranks := fuzzy.RankFindFold(id, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// DeserializeType routes Symbol and RegExp payloads through policy and
// safety validation before delegating to def.Deserialize. Every other
// id's payload is passed straight through.
func (r *Registry) DeserializeType(def *TypeDefinition, id string, data any) (any, error) {
	invariant.Precondition(def != nil, "DeserializeType called with nil definition for id %q", id)
	switch id {
	case "Symbol":
		if err := r.validateSymbolPayload(data); err != nil {
			return nil, err
		}
	case "RegExp":
		if err := r.validateRegExpPayload(data); err != nil {
			return nil, err
		}
	}
	return def.Deserialize(data)
}

func (r *Registry) validateSymbolPayload(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return &codecerr.InvalidSymbolPayloadError{Reason: "payload must be an object"}
	}
	kind, _ := m["kind"].(string)
	key, _ := m["key"].(string)
	if kind != "For" && kind != "WellKnown" {
		return &codecerr.InvalidSymbolPayloadError{Reason: fmt.Sprintf("unknown kind %q", kind)}
	}

	switch r.SymbolPolicy {
	case values.SymbolDisabled:
		return &codecerr.SymbolsDisabledError{}
	case values.SymbolWellKnownOnly:
		if kind == "For" {
			return &codecerr.GlobalSymbolsDisabledError{Key: key}
		}
	}
	if kind == "WellKnown" && !values.IsWellKnownSymbolKey(key) {
		return &codecerr.UnsupportedWellKnownSymbolError{Key: key}
	}
	return nil
}

func (r *Registry) validateRegExpPayload(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return &codecerr.InvalidRegExpPayloadError{Reason: "payload must be an object"}
	}
	pattern, pOK := m["pattern"].(string)
	flags, fOK := m["flags"].(string)
	if !pOK || !fOK {
		return &codecerr.InvalidRegExpPayloadError{Reason: "pattern and flags must be strings"}
	}
	if err := regexsafe.ValidateFlags(flags); err != nil {
		return err
	}
	return regexsafe.Validate(pattern, r.RegExpConfig)
}

// ShouldExcludeFromPayload reports whether serializedPayload already
// looks like an instance of def's type, which would cause a nested
// serialization pass to re-wrap it. Callers push def.ID onto the
// exclusion set for that nested pass when this returns true.
func (r *Registry) ShouldExcludeFromPayload(def *TypeDefinition, serializedPayload any) bool {
	return safeIs(def, serializedPayload)
}

// IDs returns every registered type id, in insertion order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idsLocked()
}

func (r *Registry) idsLocked() []string {
	out := make([]string, len(r.defs))
	for i, def := range r.defs {
		out[i] = def.ID
	}
	return out
}

var bigIntPattern = regexp.MustCompile(`^[+-]?\d+$`)

func (r *Registry) seedBuiltins() {
	builtins := []*TypeDefinition{
		dateDefinition(),
		regExpDefinition(),
		mapDefinition(),
		setDefinition(),
		undefinedDefinition(),
		nonFiniteNumberDefinition(),
		bigIntDefinition(),
		symbolDefinition(),
		errorDefinition(),
		urlDefinition(),
		urlSearchParamsDefinition(),
		arrayBufferDefinition(),
		dataViewDefinition(),
		bufferDefinition(),
	}
	builtins = append(builtins, typedArrayDefinitions()...)

	for _, def := range builtins {
		invariant.NotNil(def, "built-in type definition")
		if err := r.Add(def); err != nil {
			panic(fmt.Sprintf("registry: built-in %q failed to register: %v", def.ID, err))
		}
	}
}
