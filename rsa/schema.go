package rsa

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema"
)

//go:embed options.json
var optionsSchemaString string

var optionsSchema *jsonschema.Schema

func compileSchema(name, schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	err := compiler.AddResource(name, strings.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("schema: error adding schema %v: %v", name, err)
	}

	compiledSchema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("schema: error compiling schema %v: %v", name, err)
	}

	return compiledSchema, nil
}

func init() {
	var err error
	optionsSchema, err = compileSchema("options.json", optionsSchemaString)
	if err != nil {
		panic(err)
	}
}
