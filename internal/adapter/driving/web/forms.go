package web

import (
	"net/http"
	"reflect"
	"strings"
)

// decodeForm copies posted values into the string fields of the struct dst
// points to, matching each field's form tag. Values are trimmed.
func decodeForm(r *http.Request, dst any) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := range t.NumField() {
		name := t.Field(i).Tag.Get("form")
		if name == "" || v.Field(i).Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(strings.TrimSpace(r.PostFormValue(name)))
	}
}

// formValues returns the posted values for re-rendering a form, leaving out
// the CSRF token and secrets.
func formValues(r *http.Request) map[string]string {
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		if k == csrfFormField || k == "password" {
			continue
		}
		values[k] = r.PostForm.Get(k)
	}
	return values
}
