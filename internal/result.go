package internal

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

// Content types of wrapped results.
const (
	contentTypeHTML = "text/html"
	contentTypeJSON = "application/json"
)

// WrapResult converts an action result into a response:
//   - *httpmsg.Response passes through unchanged;
//   - string: 200 text/html with the string as body;
//   - map, slice, array or struct (or a pointer to one): 200 application/json,
//     "{}" when encoding fails;
//   - anything else, nil included: 204 with an empty body.
func WrapResult(result any) (*httpmsg.Response, error) {
	switch v := result.(type) {
	case *httpmsg.Response:
		if v != nil {
			return v, nil
		}
	case string:
		return httpmsg.NewResponse(http.StatusOK,
			httpmsg.WithHeaderValue("Content-Type", contentTypeHTML),
			httpmsg.WithBodyString(v),
		)
	default:
		if isStructured(result) {
			body, err := json.Marshal(result)
			if err != nil {
				body = []byte("{}")
			}
			return httpmsg.NewResponse(http.StatusOK,
				httpmsg.WithHeaderValue("Content-Type", contentTypeJSON),
				httpmsg.WithBodyString(string(body)),
			)
		}
	}
	return httpmsg.NewResponse(http.StatusNoContent)
}

func isStructured(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}
