package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/netfoundation/httpclient"
	"github.com/kbukum/netfoundation/param"
	"github.com/kbukum/netfoundation/validation"
)

// Descriptor is a request described in YAML. ${VAR} references are
// expanded from the environment before parsing.
//
//	method: POST
//	host: https://api.example.com/v1
//	path: users
//	headers:
//	  Authorization: Bearer ${API_TOKEN}
//	query:
//	  ids: [1, 2, 3]
//	body:
//	  name: Ada
//	  active: true
type Descriptor struct {
	Method  string            `yaml:"method" json:"method"`
	Host    string            `yaml:"host" json:"host" validate:"required,url"`
	Path    string            `yaml:"path" json:"path"`
	Headers map[string]string `yaml:"headers" json:"headers"`
	Query   map[string]any    `yaml:"query" json:"query"`
	Body    map[string]any    `yaml:"body" json:"body"`
	Upload  *Upload           `yaml:"upload" json:"upload"`

	method httpclient.Method
	dir    string
}

// Upload sends a file instead of body parameters.
type Upload struct {
	// File is resolved relative to the descriptor.
	File        string `yaml:"file" json:"file" validate:"required"`
	ContentType string `yaml:"content_type" json:"content_type"`
	// Field sends the file as a multipart form field. Empty sends it as
	// the raw body.
	Field  string            `yaml:"field" json:"field"`
	Fields map[string]string `yaml:"fields" json:"fields"`
}

// LoadDescriptor reads and validates a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}
	d.dir = filepath.Dir(path)
	return d, nil
}

// ParseDescriptor parses and validates descriptor YAML. Unknown keys are
// rejected.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := validation.Validate(&d); err != nil {
		return nil, err
	}

	d.method = httpclient.MethodGet
	if d.Method != "" {
		m, err := httpclient.ParseMethod(d.Method)
		if err != nil {
			return nil, err
		}
		d.method = m
	}
	if d.Upload != nil && len(d.Body) > 0 {
		return nil, fmt.Errorf("body and upload are mutually exclusive")
	}
	if d.Upload != nil && d.Upload.Field == "" && len(d.Upload.Fields) > 0 {
		return nil, fmt.Errorf("upload fields require upload.field")
	}
	return &d, nil
}

// Route converts the descriptor into a router.
func (d *Descriptor) Route() httpclient.Route {
	return httpclient.Route{
		Verb:     d.method,
		BaseURL:  d.Host,
		Endpoint: d.Path,
		Header:   d.Headers,
		Query:    param.FromMap(d.Query),
		Body:     param.FromMap(d.Body),
	}
}

// Payload reads the upload file. It returns false when the descriptor has
// no upload.
func (d *Descriptor) Payload() (httpclient.Payload, bool, error) {
	if d.Upload == nil {
		return httpclient.Payload{}, false, nil
	}
	path := d.Upload.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return httpclient.Payload{}, true, fmt.Errorf("read upload: %w", err)
	}

	if d.Upload.Field == "" {
		return httpclient.BytesPayload(data, d.Upload.ContentType), true, nil
	}
	mp := &httpclient.MultipartBody{
		Fields: d.Upload.Fields,
		Files: []httpclient.FileField{{
			FieldName:   d.Upload.Field,
			FileName:    filepath.Base(path),
			ContentType: d.Upload.ContentType,
			Data:        data,
		}},
	}
	p, err := mp.Payload()
	return p, true, err
}
