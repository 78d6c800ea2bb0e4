package output

import (
	"encoding/json"
	"io"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

var prettyCodec = codec.New(codec.Spaces(2))

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format writes data as indented JSON followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	var (
		out []byte
		err error
	)
	switch d := data.(type) {
	case *domain.Object:
		out, err = prettyCodec.Marshal(d)
	case domain.Value:
		if obj, ok := d.AsObject(); ok {
			out, err = prettyCodec.Marshal(obj)
		} else {
			out, err = codec.MarshalValue(d)
		}
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
