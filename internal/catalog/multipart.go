package catalog

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// encodeMultipart builds a multipart/form-data body from stringified scalar
// fields plus an optional file part. It returns the body and the content
// type carrying the boundary.
func encodeMultipart(fields map[string]string, fileField string, file *FileUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if file != nil {
		part, err := writer.CreateFormFile(fileField, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
