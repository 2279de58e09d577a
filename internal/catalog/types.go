package catalog

import (
	"fmt"
	"strconv"
)

// Product mirrors the payload returned by the inventory API.
// Field names follow the wire contract, which is Spanish.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	Stock       int     `json:"stock"`
	Category    string  `json:"categoria"`
	ImageURL    string  `json:"urlfoto"`
}

// IsNew reports whether the product has not been persisted yet.
// The server assigns ids; zero means "not created".
func (p Product) IsNew() bool {
	return p.ID == 0
}

// Category mirrors /api/categorias/ entries.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// Fields carries the scalar product fields of a create or update
// submission. Values are stringified into the multipart body exactly as
// the browser client would send them.
type Fields struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
}

func (f Fields) formValues() map[string]string {
	return map[string]string{
		"nombre":      f.Name,
		"descripcion": f.Description,
		"precio":      strconv.FormatFloat(f.Price, 'f', -1, 64),
		"stock":       strconv.Itoa(f.Stock),
		"categoria":   f.Category,
	}
}

// FileUpload is a binary image payload attached to a submission.
type FileUpload struct {
	Filename string
	Data     []byte
}

// ImageKind discriminates the two image reference states.
type ImageKind int

const (
	// ImageRemote means the image lives at a server-provided URL.
	ImageRemote ImageKind = iota
	// ImagePending means a local file has been chosen but not uploaded.
	ImagePending
)

// ImageRef is the tagged union over a product's image reference: either a
// remote URL or a pending, not-yet-uploaded local file. Exactly one side is
// meaningful at a time; choosing a file supersedes the URL until the upload
// completes and the server URL replaces it.
type ImageRef struct {
	kind    ImageKind
	url     string
	pending FileUpload
}

// RemoteImage builds an ImageRef pointing at a server URL.
func RemoteImage(url string) ImageRef {
	return ImageRef{kind: ImageRemote, url: url}
}

// PendingImage builds an ImageRef carrying an unsubmitted local file.
func PendingImage(file FileUpload) ImageRef {
	return ImageRef{kind: ImagePending, pending: file}
}

// Kind returns which side of the union is current.
func (r ImageRef) Kind() ImageKind { return r.kind }

// Pending returns the local file payload. Only meaningful when Kind is
// ImagePending.
func (r ImageRef) Pending() (FileUpload, bool) {
	if r.kind != ImagePending {
		return FileUpload{}, false
	}
	return r.pending, true
}

// DisplayURL resolves the reference to something the UI can show. A pending
// file renders as a synthetic label since there is no URL for it yet.
func (r ImageRef) DisplayURL() string {
	switch r.kind {
	case ImagePending:
		return fmt.Sprintf("(pending upload: %s)", r.pending.Filename)
	default:
		return r.url
	}
}
