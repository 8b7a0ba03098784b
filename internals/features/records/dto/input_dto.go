package dto

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// FormInput is a flat view over a multipart, urlencoded or JSON body.
type FormInput struct {
	values map[string][]string
	Form   *multipart.Form // nil unless multipart
}

func NewFormInput(values map[string][]string) *FormInput {
	if values == nil {
		values = map[string][]string{}
	}
	return &FormInput{values: values}
}

// ReadInput binds the request body regardless of content type.
func ReadInput(c *fiber.Ctx) (*FormInput, error) {
	in := NewFormInput(nil)
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid multipart form")
		}
		in.Form = form
		for k, v := range form.Value {
			in.values[k] = v
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		if len(c.Body()) == 0 {
			return in, nil
		}
		var raw map[string]any
		if err := sonic.Unmarshal(c.Body(), &raw); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		for k, v := range raw {
			in.values[k] = flattenJSON(v)
		}
	default:
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			key := string(k)
			in.values[key] = append(in.values[key], string(v))
		})
	}
	return in, nil
}

// flattenJSON turns a decoded JSON value into form-style strings. Arrays of
// objects and objects stay as one JSON-encoded string.
func flattenJSON(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(t)}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			switch e.(type) {
			case map[string]any, []any:
				s, _ := sonic.MarshalString(t)
				return []string{s}
			}
			out = append(out, flattenJSON(e)...)
		}
		return out
	default:
		s, _ := sonic.MarshalString(t)
		return []string{s}
	}
}

// Str returns the first non-blank value among keys.
func (in *FormInput) Str(keys ...string) string {
	for _, k := range keys {
		for _, v := range in.values[k] {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func (in *FormInput) StrPtr(keys ...string) *string {
	if v := in.Str(keys...); v != "" {
		return &v
	}
	return nil
}

// List returns every non-blank value among keys, in order.
func (in *FormInput) List(keys ...string) []string {
	var out []string
	for _, k := range keys {
		for _, v := range in.values[k] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (in *FormInput) IntPtr(key string, errs map[string]string) *int {
	raw := in.Str(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[key] = "must be an integer"
		return nil
	}
	return &n
}

func (in *FormInput) FloatPtr(key string, errs map[string]string) *float64 {
	raw := in.Str(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[key] = "must be a number"
		return nil
	}
	return &f
}

// DatePtr accepts YYYY-MM-DD or RFC3339.
func (in *FormInput) DatePtr(key string, errs map[string]string) *time.Time {
	raw := in.Str(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	errs[key] = "must be a date (YYYY-MM-DD)"
	return nil
}
