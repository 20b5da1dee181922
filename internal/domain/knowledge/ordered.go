package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalJSON decodes a JSON object keyed by nutrient key, keeping key order.
func (n *Nutrients) UnmarshalJSON(data []byte) error {
	out := Nutrients{}
	err := decodeOrderedJSON(data, func(key string, dec *json.Decoder) error {
		var item Nutrient
		if err := dec.Decode(&item); err != nil {
			return err
		}
		item.Key = key
		out = append(out, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("nutrients: %w", err)
	}
	*n = out
	return nil
}

// UnmarshalYAML decodes a YAML mapping keyed by nutrient key, keeping key order.
func (n *Nutrients) UnmarshalYAML(node *yaml.Node) error {
	out := Nutrients{}
	err := decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		var item Nutrient
		if err := value.Decode(&item); err != nil {
			return err
		}
		item.Key = key
		out = append(out, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("nutrients: %w", err)
	}
	*n = out
	return nil
}

// MarshalJSON writes the table back as an object in its original order.
func (n Nutrients) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(item.Key)
		val, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keyed by ingredient key, keeping key order.
func (s *SeasonalItems) UnmarshalJSON(data []byte) error {
	out := SeasonalItems{}
	err := decodeOrderedJSON(data, func(key string, dec *json.Decoder) error {
		var item SeasonalItem
		if err := dec.Decode(&item); err != nil {
			return err
		}
		item.Key = key
		out = append(out, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("seasonal items: %w", err)
	}
	*s = out
	return nil
}

// UnmarshalYAML decodes a YAML mapping keyed by ingredient key, keeping key order.
func (s *SeasonalItems) UnmarshalYAML(node *yaml.Node) error {
	out := SeasonalItems{}
	err := decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		var item SeasonalItem
		if err := value.Decode(&item); err != nil {
			return err
		}
		item.Key = key
		out = append(out, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("seasonal items: %w", err)
	}
	*s = out
	return nil
}

func decodeOrderedJSON(data []byte, each func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}
		if err := each(key, dec); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}

func decodeOrderedYAML(node *yaml.Node, each func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if err := each(key, node.Content[i+1]); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}
