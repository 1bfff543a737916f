package formutil

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

type payload struct {
	Name       string  `json:"name"`
	Email      *string `json:"email"`
	Categories List    `json:"categories"`
	Language   *List   `json:"language"`
	Ignored    int     `json:"ignored"`
}

func TestBind_JSON(t *testing.T) {
	body := `{"name":"Ann","email":"a@x.io","categories":"tech","language":["en","fr"]}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	var p payload
	if err := Bind(httptest.NewRecorder(), r, &p); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if p.Name != "Ann" || p.Email == nil || *p.Email != "a@x.io" {
		t.Errorf("scalars = %+v", p)
	}
	if !reflect.DeepEqual(p.Categories, List{"tech"}) {
		t.Errorf("categories = %v", p.Categories)
	}
	if p.Language == nil || !reflect.DeepEqual(*p.Language, List{"en", "fr"}) {
		t.Errorf("language = %v", p.Language)
	}
}

func TestBind_JSONMalformed(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	r.Header.Set("Content-Type", "application/json")
	var p payload
	if err := Bind(httptest.NewRecorder(), r, &p); !errors.Is(err, ErrBadBody) {
		t.Errorf("got %v, want ErrBadBody", err)
	}
}

func TestBind_JSONEmpty(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")
	var p payload
	if err := Bind(httptest.NewRecorder(), r, &p); err != nil {
		t.Errorf("empty body: %v", err)
	}
}

func TestBind_URLEncoded(t *testing.T) {
	form := url.Values{"name": {"Bob"}, "categories": {"a", "b"}}
	r := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var p payload
	if err := Bind(httptest.NewRecorder(), r, &p); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if p.Name != "Bob" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Email != nil || p.Language != nil {
		t.Errorf("absent fields should stay nil: %+v", p)
	}
	if !reflect.DeepEqual(p.Categories, List{"a", "b"}) {
		t.Errorf("categories = %v", p.Categories)
	}
}

func TestBind_MultipartWithFiles(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "Cy")
	mw.WriteField("email", "")
	mw.WriteField("language", `["en","de"]`)
	fw, _ := mw.CreateFormFile("images", "a.png")
	fw.Write([]byte("x"))
	fw, _ = mw.CreateFormFile("images", "b.png")
	fw.Write([]byte("y"))
	mw.Close()

	r := httptest.NewRequest("POST", "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	var p payload
	if err := Bind(httptest.NewRecorder(), r, &p); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if p.Name != "Cy" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Email == nil || *p.Email != "" {
		t.Errorf("present but empty email should be a pointer to \"\", got %v", p.Email)
	}
	if p.Language == nil || !reflect.DeepEqual(*p.Language, List{"en", "de"}) {
		t.Errorf("language = %v", p.Language)
	}
	if files := Files(r, "images"); len(files) != 2 {
		t.Errorf("files = %d, want 2", len(files))
	}
	if File(r, "avatar") != nil {
		t.Error("File should be nil for a missing field")
	}
}

func TestBind_EmbeddedStruct(t *testing.T) {
	type address struct {
		State   string `json:"state"`
		Country string `json:"country"`
	}
	type withAddress struct {
		Name string `json:"name"`
		address
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader("name=Dee&state=CA&country=us"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var p withAddress
	if err := Bind(httptest.NewRecorder(), r, &p); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if p.Name != "Dee" || p.State != "CA" || p.Country != "us" {
		t.Errorf("got %+v", p)
	}
}
