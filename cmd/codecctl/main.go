// Command codecctl is a small demo CLI exercising the codec package's
// public surface end to end: stringify/parse drive the tree form,
// serialize/deserialize drive the identity-preserving graph form.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessellate/vgraph/codec"
	"github.com/tessellate/vgraph/values"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codecctl: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	input        string
	pretty       bool
	maxDepth     int
	allowedTypes string
	symbolPolicy string
	maxRegExpLen int
	allowUnsafe  bool
	strictSchema bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "codecctl",
		Short:         "Stringify, parse, serialize and deserialize values with the graph codec",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.input, "file", "f", "-", "input file, or - for stdin")
	root.PersistentFlags().BoolVar(&f.pretty, "pretty", false, "indent output with two spaces")
	root.PersistentFlags().IntVar(&f.maxDepth, "max-depth", -1, "maximum recursion depth (-1 = default 1000)")
	root.PersistentFlags().StringVar(&f.allowedTypes, "allowed-types", "", "comma-separated allowlist of type ids (empty = allow all)")
	root.PersistentFlags().StringVar(&f.symbolPolicy, "symbol-policy", "allow-all", "allow-all | well-known-only | disabled")
	root.PersistentFlags().IntVar(&f.maxRegExpLen, "max-regexp-length", 0, "maximum RegExp pattern length (0 = default 1024)")
	root.PersistentFlags().BoolVar(&f.allowUnsafe, "allow-unsafe-regexp", false, "skip the backtracking-safety heuristic")
	root.PersistentFlags().BoolVar(&f.strictSchema, "strict-schema", false, "validate graph envelopes against their fixed JSON Schema first")

	root.AddCommand(
		newStringifyCmd(f),
		newParseCmd(f),
		newSerializeCmd(f),
		newDeserializeCmd(f),
	)
	return root
}

func (f *flags) serializer() (*codec.Serializer, error) {
	policy, err := parseSymbolPolicy(f.symbolPolicy)
	if err != nil {
		return nil, err
	}

	opts := []codec.Option{
		codec.WithPretty(f.pretty),
		codec.WithMaxDepth(f.maxDepth),
		codec.WithSymbolPolicy(policy),
		codec.WithMaxRegExpPatternLength(f.maxRegExpLen),
		codec.WithAllowUnsafeRegExp(f.allowUnsafe),
		codec.WithStrictEnvelopeSchema(f.strictSchema),
	}
	if f.allowedTypes != "" {
		opts = append(opts, codec.WithAllowedTypes(strings.Split(f.allowedTypes, ",")...))
	}
	return codec.New(opts...), nil
}

func parseSymbolPolicy(s string) (values.SymbolPolicy, error) {
	switch s {
	case "allow-all", "":
		return values.SymbolAllowAll, nil
	case "well-known-only":
		return values.SymbolWellKnownOnly, nil
	case "disabled":
		return values.SymbolDisabled, nil
	default:
		return 0, fmt.Errorf("unknown --symbol-policy %q", s)
	}
}

func (f *flags) readInput() ([]byte, error) {
	if f.input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(f.input)
}

// readValue decodes the input file as JSON, for commands (stringify,
// serialize) whose argument is an arbitrary value rather than an
// already-encoded codec document.
func (f *flags) readValue() (any, error) {
	data, err := f.readInput()
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("input is not valid JSON: %w", err)
	}
	return v, nil
}

func newStringifyCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "stringify",
		Short: "Render a JSON value as tree-form codec output",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.serializer()
			if err != nil {
				return err
			}
			v, err := f.readValue()
			if err != nil {
				return err
			}
			out, err := s.Stringify(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
}

func newParseCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Reconstruct a value from tree-form codec input",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.serializer()
			if err != nil {
				return err
			}
			data, err := f.readInput()
			if err != nil {
				return err
			}
			v, err := s.Parse(string(data))
			if err != nil {
				return err
			}
			return printJSON(v, f.pretty)
		},
	}
}

func newSerializeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serialize",
		Short: "Render a JSON value as graph-form codec output",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.serializer()
			if err != nil {
				return err
			}
			v, err := f.readValue()
			if err != nil {
				return err
			}
			out, err := s.Serialize(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
}

func newDeserializeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "deserialize",
		Short: "Reconstruct a value from graph-form codec input",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.serializer()
			if err != nil {
				return err
			}
			data, err := f.readInput()
			if err != nil {
				return err
			}
			v, err := s.Deserialize(string(data))
			if err != nil {
				return err
			}
			return printJSON(v, f.pretty)
		},
	}
}

// printJSON renders a decoded value (which may contain Go types with no
// json.Marshaler, such as values.Undefined or *values.OrderedMap) as
// plain JSON for display purposes only; this is not the codec's wire
// format and loses type/identity information the codec itself preserves.
func printJSON(v any, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(displayValue(v), "", "  ")
	} else {
		b, err = json.Marshal(displayValue(v))
	}
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(b))
	return nil
}

// displayValue substitutes a plain JSON-marshalable shape for the codec
// values the standard json package doesn't know how to render.
func displayValue(v any) any {
	switch val := v.(type) {
	case values.UndefinedType:
		return nil
	case *values.OrderedMap:
		out := make(map[string]any, val.Len())
		for _, kv := range val.Entries() {
			out[fmt.Sprint(kv[0])] = displayValue(kv[1])
		}
		return out
	case *values.OrderedSet:
		out := make([]any, 0, val.Len())
		for _, item := range val.Values() {
			out = append(out, displayValue(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = displayValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = displayValue(item)
		}
		return out
	default:
		return v
	}
}
