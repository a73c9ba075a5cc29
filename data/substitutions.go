package data

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/commeator/api-test-harness/framework/helpers"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/maps"
)

// A data file may declare "constants" (one set of name/value pairs) and "parameters". A
// placeholder "<NAME>" anywhere in the file is replaced by the value. Where the placeholder is
// the whole of a quoted string, the quotes go too, so non-string values keep their JSON type.
//
// "parameters" is either a list of sets, giving one expansion of the file per set, or a list
// of lists of sets, giving one expansion per combination (the first list varies fastest).
type substitutionSet map[string]ldvalue.Value

var errBadParameters = errors.New("parameters must be an array of objects or an array of arrays of objects")

func expandSubstitutions(originalData []byte) ([]SourceInfo, error) {
	var decl struct {
		Constants  substitutionSet   `json:"constants"`
		Parameters []json.RawMessage `json:"parameters"`
	}
	if err := ParseJSONOrYAML(originalData, &decl); err != nil {
		return nil, err
	}
	withConstants := decl.Constants.applyTo(originalData)

	paramSets, err := parameterCombinations(decl.Parameters)
	if err != nil {
		return nil, err
	}
	if len(paramSets) == 0 {
		return []SourceInfo{{Data: withConstants}}, nil
	}
	ret := make([]SourceInfo, 0, len(paramSets))
	for _, params := range paramSets {
		// constants are applied again in case a parameter value refers to one
		expanded := decl.Constants.applyTo(params.applyTo(withConstants))
		ret = append(ret, SourceInfo{Data: expanded, Params: params})
	}
	return ret, nil
}

func parameterCombinations(raw []json.RawMessage) ([]substitutionSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	groups := make([][]substitutionSet, 0, len(raw))
	nested := ldvalue.Parse(raw[0]).Type() == ldvalue.ArrayType
	for _, item := range raw {
		if nested {
			var group []substitutionSet
			if err := json.Unmarshal(item, &group); err != nil || len(group) == 0 {
				return nil, errBadParameters
			}
			groups = append(groups, group)
			continue
		}
		var set substitutionSet
		if err := json.Unmarshal(item, &set); err != nil || set == nil {
			return nil, errBadParameters
		}
		groups = append(groups, []substitutionSet{set})
	}
	if !nested {
		// a flat list is a single group of alternatives
		flat := make([]substitutionSet, 0, len(groups))
		for _, g := range groups {
			flat = append(flat, g[0])
		}
		return flat, nil
	}
	return combine(groups), nil
}

func combine(groups [][]substitutionSet) []substitutionSet {
	if len(groups) == 0 {
		return []substitutionSet{{}}
	}
	rest := combine(groups[1:])
	ret := make([]substitutionSet, 0, len(rest)*len(groups[0]))
	for _, tail := range rest {
		for _, head := range groups[0] {
			merged := make(substitutionSet, len(head)+len(tail))
			maps.Copy(merged, tail)
			maps.Copy(merged, head)
			ret = append(ret, merged)
		}
	}
	return ret
}

func (s substitutionSet) applyTo(data []byte) []byte {
	if len(s) == 0 {
		return data
	}
	text := string(data)
	// JSON encoders may have escaped the angle brackets
	text = strings.NewReplacer(`\u003c`, "<", `\u003e`, ">").Replace(text)
	for _, name := range helpers.Sorted(maps.Keys(s)) {
		value := s[name]
		text = strings.ReplaceAll(text, `"<`+name+`>"`, value.JSONString())
		inline := value.JSONString()
		if value.IsString() {
			inline = value.StringValue()
		}
		text = strings.ReplaceAll(text, "<"+name+">", inline)
	}
	return []byte(text)
}
