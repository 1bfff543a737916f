// Package formutil binds request bodies onto payload structs.
//
// The same payload struct serves JSON, urlencoded and multipart requests.
// Fields are matched by their json tag name. For form bodies the supported
// field types are:
//
//	string     the first value, "" when absent
//	*string    nil when the field is absent, so partial updates can tell
//	           "not sent" from "cleared"
//	List       every value; see List for splitting rules
//	*List      nil when absent
//
// Example:
//
//	type updatePost struct {
//		Title      *string        `json:"title"`
//		Categories *formutil.List `json:"categories"`
//	}
//
//	var in updatePost
//	if err := formutil.Bind(w, r, &in); err != nil { ... }
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
)

// MaxMemory is the multipart memory limit; larger parts spill to disk.
const MaxMemory = 32 << 20

// MaxJSONBody caps JSON request bodies.
const MaxJSONBody = 1 << 20

// ErrBadBody is wrapped by every decoding failure.
var ErrBadBody = errors.New("malformed request body")

// List is a list of strings that accepts loose input. In JSON it may be an
// array or a single string. In a form each value is kept as is, except that
// a lone value that looks like a JSON array is decoded as one.
type List []string

func (l *List) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = List{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = List(many)
	return nil
}

func listFromForm(values []string) List {
	if len(values) == 1 {
		v := strings.TrimSpace(values[0])
		if strings.HasPrefix(v, "[") {
			var many []string
			if json.Unmarshal([]byte(v), &many) == nil {
				return List(many)
			}
		}
	}
	return List(append([]string(nil), values...))
}

// IsJSON reports whether r declares a JSON body.
func IsJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// IsMultipart reports whether r declares a multipart body.
func IsMultipart(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "multipart/form-data"
}

// Bind decodes r's body into dst, a pointer to a struct. An empty body
// leaves dst untouched.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if IsJSON(r) {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %v", ErrBadBody, err)
		}
		return nil
	}

	if err := parse(r); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	return bindForm(r, dst)
}

func parse(r *http.Request) error {
	if IsMultipart(r) {
		if r.MultipartForm != nil {
			return nil
		}
		return r.ParseMultipartForm(MaxMemory)
	}
	return r.ParseForm()
}

var (
	stringType  = reflect.TypeOf("")
	listType    = reflect.TypeOf(List(nil))
	strPtrType  = reflect.TypeOf((*string)(nil))
	listPtrType = reflect.TypeOf((*List)(nil))
)

func bindForm(r *http.Request, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("formutil: dst must be a pointer to struct, got %T", dst)
	}
	bindStruct(v.Elem(), r.PostForm)
	return nil
}

// bindStruct fills v's tagged fields from form. Untagged embedded structs
// are descended into, as encoding/json does.
func bindStruct(v reflect.Value, form map[string][]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			bindStruct(v.Field(i), form)
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		values, present := form[name]
		if !present {
			continue
		}
		fv := v.Field(i)

		switch f.Type {
		case stringType:
			fv.SetString(first(values))
		case strPtrType:
			s := first(values)
			fv.Set(reflect.ValueOf(&s))
		case listType:
			fv.Set(reflect.ValueOf(listFromForm(values)))
		case listPtrType:
			l := listFromForm(values)
			fv.Set(reflect.ValueOf(&l))
		}
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Files returns the uploaded files under field, or nil when the request
// is not multipart or has none.
func Files(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// File returns the first uploaded file under field, or nil.
func File(r *http.Request, field string) *multipart.FileHeader {
	if files := Files(r, field); len(files) > 0 {
		return files[0]
	}
	return nil
}
