package output

import (
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format writes data as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	switch d := data.(type) {
	case *domain.Object:
		data = objectNode(d)
	case domain.Value:
		data = valueNode(d)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func objectNode(o *domain.Object) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	o.Range(func(key string, v domain.Value) bool {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode(v))
		return true
	})
	return n
}

func valueNode(v domain.Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch v.Kind() {
	case domain.KindString:
		s, _ := v.AsString()
		return scalar("!!str", s)
	case domain.KindInt:
		n, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(n, 10))
	case domain.KindFloat:
		x, _ := v.AsFloat()
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return scalar("!!float", s)
	case domain.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b))
	case domain.KindList:
		items, _ := v.AsList()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range items {
			n.Content = append(n.Content, valueNode(item))
		}
		return n
	case domain.KindObject:
		obj, _ := v.AsObject()
		return objectNode(obj)
	default:
		return scalar("!!null", "null")
	}
}
