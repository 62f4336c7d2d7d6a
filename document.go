package smolnet

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/KarpelesLab/pjson"
)

// Document is a JSON response kept in raw form, for callers without a target
// type. Use it as the type parameter of Dispatch.
type Document struct {
	Raw []byte
}

func (d *Document) UnmarshalJSON(data []byte) error {
	d.Raw = append([]byte(nil), data...)
	return nil
}

func (d *Document) UnmarshalContextJSON(ctx context.Context, data []byte) error {
	return d.UnmarshalJSON(data)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	if d.Raw == nil {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// Apply decodes the document into v.
func (d *Document) Apply(ctx context.Context, v any) error {
	return pjson.UnmarshalContext(ctx, d.Raw, v)
}

// Value returns the document parsed as generic JSON values.
func (d *Document) Value() (any, error) {
	var res any
	if err := pjson.Unmarshal(d.Raw, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns the value found at a slash separated path of object keys. An
// empty path returns the root.
func (d *Document) Get(v string) (any, error) {
	cur, err := d.Value()
	if err != nil {
		return nil, err
	}

	for _, sub := range strings.Split(v, "/") {
		if sub == "" {
			continue
		}
		curV, ok := cur.(map[string]any)
		if !ok {
			return nil, fs.ErrNotExist
		}
		cur, ok = curV[sub]
		if !ok {
			return nil, fs.ErrNotExist
		}
	}
	return cur, nil
}

func (d *Document) GetString(v string) (string, error) {
	res, err := d.Get(v)
	if err != nil {
		return "", err
	}
	str, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("unexpected type %T for string %s", res, v)
	}
	return str, nil
}
