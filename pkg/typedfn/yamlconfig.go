package typedfn

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadYAMLBundle reads a signature bundle of the form
//
//	"number, number": sum
//	string:           greet
//	"...string":      concat
//
// — a YAML mapping from signature text to an implementation name — and
// resolves each name against impls, producing Bindings in the document's
// original key order.
//
// A plain map[string]string target would lose that order (Go map
// iteration is unspecified), so this decodes into yaml.Node directly and
// walks its Content pairs instead, the same way
// internal/evaluator/builtins_yaml.go defers to yaml.v3 for the parse
// step but needs map[interface{}]interface{} handling for YAML's looser
// key typing.
func LoadYAMLBundle(data []byte, impls map[string]any) (Bindings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("typedfn: parsing YAML bundle: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("typedfn: YAML bundle must be a mapping of signature -> implementation name")
	}

	bindings := make(Bindings, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		sigNode, implNode := root.Content[i], root.Content[i+1]
		var sig, implName string
		if err := sigNode.Decode(&sig); err != nil {
			return nil, fmt.Errorf("typedfn: bundle key %d: %w", i/2, err)
		}
		if err := implNode.Decode(&implName); err != nil {
			return nil, fmt.Errorf("typedfn: bundle value for %q: %w", sig, err)
		}
		fn, ok := impls[implName]
		if !ok {
			return nil, fmt.Errorf("typedfn: bundle references unknown implementation %q for signature %q", implName, sig)
		}
		bindings = append(bindings, Binding{Signature: sig, Fn: fn})
	}
	return bindings, nil
}
