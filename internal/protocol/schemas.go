package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "https://questsolver.local/protocol/"

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	schemas = map[string]*jsonschema.Schema{}
	c := jsonschema.NewCompiler()
	for _, typ := range []string{TypeSolve, TypeResult, TypeError} {
		name := strings.ToLower(typ) + ".schema.json"
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(b)); err != nil {
			schemasErr = err
			return
		}
	}
	for _, typ := range []string{TypeSolve, TypeResult, TypeError} {
		s, err := c.Compile(schemaBase + strings.ToLower(typ) + ".schema.json")
		if err != nil {
			schemasErr = err
			return
		}
		schemas[typ] = s
	}
}

// Validate checks raw against the schema of message type typ.
func Validate(typ string, raw []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	s, ok := schemas[typ]
	if !ok {
		return fmt.Errorf("no schema for message type %q", typ)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
