package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/providers/filesystem"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

// Validation failure messages.
const (
	MsgExpectingJSON   = "expecting JSON data"
	MsgCannotDecode    = "could not decode request body"
	MsgCannotParseJSON = "could not parse JSON request body"
	MsgSchemaMismatch  = "data does not match expected schema"
)

const schemaBase = "https://weaverest.local/schema/"

const appendSchema = `{
	"type": "object",
	"properties": {
		"data": {"type": "string"}
	},
	"required": ["data"]
}`

const putSchema = `{
	"type": "object",
	"properties": {
		"directory": {"type": "boolean"},
		"mode": {"type": "string", "pattern": "^[0-7]{3}$"},
		"data": {"type": "string"}
	}
}`

// Validator checks request bodies for the write verbs.
type Validator struct {
	appendSchema *jsonschema.Schema
	putSchema    *jsonschema.Schema
}

// NewValidator compiles the request schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	compile := func(name, source string) (*jsonschema.Schema, error) {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(source))
		if err != nil {
			return nil, fmt.Errorf("parse %s schema: %w", name, err)
		}
		url := schemaBase + name + ".json"
		if err := compiler.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", name, err)
		}
		sch, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		return sch, nil
	}

	appendSch, err := compile("append", appendSchema)
	if err != nil {
		return nil, err
	}
	putSch, err := compile("put", putSchema)
	if err != nil {
		return nil, err
	}

	return &Validator{appendSchema: appendSch, putSchema: putSch}, nil
}

// Append validates a POST body.
func (v *Validator) Append(r *http.Request) (*filesystem.AppendRequest, error) {
	var req filesystem.AppendRequest
	if err := v.decode(r, v.appendSchema, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Put validates a PUT body.
func (v *Validator) Put(r *http.Request) (*filesystem.PutRequest, error) {
	var req filesystem.PutRequest
	if err := v.decode(r, v.putSchema, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (v *Validator) decode(r *http.Request, schema *jsonschema.Schema, out interface{}) error {
	charset, err := jsonCharset(r.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	raw, err := readBody(r)
	if err != nil {
		return err
	}

	content, err := decodeBody(raw, charset)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		return apperrors.BadRequest(MsgCannotParseJSON, err)
	}
	if err := schema.Validate(inst); err != nil {
		return apperrors.BadRequest(MsgSchemaMismatch, err)
	}

	// codec.Text keeps lone surrogate escapes that the generic decode above
	// replaces.
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return apperrors.BadRequest(MsgCannotParseJSON, err)
	}
	return nil
}

// jsonCharset returns the charset parameter of an application/json content
// type, utf-8 when absent.
func jsonCharset(contentType string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", apperrors.BadRequest(MsgExpectingJSON, err)
	}
	if mediaType != "application/json" {
		return "", apperrors.BadRequest(MsgExpectingJSON, nil)
	}

	charset := strings.Trim(params["charset"], `'"`)
	if charset == "" {
		charset = "utf-8"
	}
	return charset, nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.TooLarge(err)
		}
		return nil, apperrors.BadRequest(MsgCannotDecode, err)
	}
	return buf.Bytes(), nil
}

func decodeBody(raw []byte, charset string) (string, error) {
	content, err := codec.DecodeCharset(charset, raw)
	if err != nil {
		return "", apperrors.BadRequest(MsgCannotDecode, err)
	}
	return content, nil
}
