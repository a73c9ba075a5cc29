package data

import (
	"encoding/json"
	"fmt"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// ParseJSONOrYAML works like json.Unmarshal, but also accepts YAML. YAML input is converted to
// JSON first, so the target's json tags and UnmarshalJSON methods apply either way.
func ParseJSONOrYAML(data []byte, target interface{}) error {
	if json.Valid(data) {
		return json.Unmarshal(data, target)
	}
	jsonData, err := yamlToJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, target)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var parsed interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	converted, err := jsonCompatible(parsed)
	if err != nil {
		return nil, err
	}
	return json.Marshal(converted)
}

// jsonCompatible replaces YAML maps, which may have non-string keys, with string-keyed maps.
// Scalar keys are formatted as strings; anything else is an error.
func jsonCompatible(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			key, err := mapKeyString(k)
			if err != nil {
				return nil, err
			}
			converted, err := jsonCompatible(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}

func mapKeyString(key interface{}) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case int:
		return strconv.Itoa(k), nil
	case bool:
		return strconv.FormatBool(k), nil
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("YAML data contained a map key of type %T; only scalar keys are allowed", key)
	}
}
