package catalog

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProduct_DecodesWireNames(t *testing.T) {
	payload := `{"id":4,"nombre":"Castañas","descripcion":"tostadas","precio":12.5,"stock":8,"categoria":"Frutos secos","urlfoto":"https://cdn/c.jpg"}`

	var p Product
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if p.ID != 4 || p.Name != "Castañas" || p.Price != 12.5 || p.Stock != 8 {
		t.Fatalf("decoded product = %#v", p)
	}
	if p.Category != "Frutos secos" || p.ImageURL != "https://cdn/c.jpg" {
		t.Fatalf("decoded product = %#v", p)
	}
	if p.IsNew() {
		t.Fatal("IsNew() = true for a server-assigned id")
	}
	if !(Product{}).IsNew() {
		t.Fatal("IsNew() = false for the zero product")
	}
}

func TestFields_FormValuesStringifyScalars(t *testing.T) {
	f := Fields{Name: "Miel", Description: "pura", Price: 7.25, Stock: 3, Category: "Encurtidos"}
	values := f.formValues()

	want := map[string]string{
		"nombre":      "Miel",
		"descripcion": "pura",
		"precio":      "7.25",
		"stock":       "3",
		"categoria":   "Encurtidos",
	}
	for k, v := range want {
		if values[k] != v {
			t.Fatalf("formValues[%q] = %q, want %q", k, values[k], v)
		}
	}
}

func TestImageRef_UnionResolution(t *testing.T) {
	remote := RemoteImage("https://cdn/a.jpg")
	if remote.Kind() != ImageRemote {
		t.Fatalf("Kind = %v, want ImageRemote", remote.Kind())
	}
	if remote.DisplayURL() != "https://cdn/a.jpg" {
		t.Fatalf("DisplayURL = %q, want remote url", remote.DisplayURL())
	}
	if _, ok := remote.Pending(); ok {
		t.Fatal("Pending() = ok for a remote reference")
	}

	pending := PendingImage(FileUpload{Filename: "local.png", Data: []byte{1}})
	if pending.Kind() != ImagePending {
		t.Fatalf("Kind = %v, want ImagePending", pending.Kind())
	}
	file, ok := pending.Pending()
	if !ok || file.Filename != "local.png" {
		t.Fatalf("Pending() = %#v/%v, want local.png", file, ok)
	}
	if !strings.Contains(pending.DisplayURL(), "local.png") {
		t.Fatalf("DisplayURL = %q, want the pending filename", pending.DisplayURL())
	}
}
