// Package validation checks listing submissions against an embedded JSON
// Schema.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/samirrijal/propmap/internal/core/domain"
)

//go:embed listing.schema.json
var listingSchema []byte

const schemaURL = "listing.schema.json"

// Validator implements ports.ListingValidator.
type Validator struct {
	input *jsonschema.Schema
	patch *jsonschema.Schema
}

// New compiles the listing schemas.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(listingSchema)); err != nil {
		return nil, fmt.Errorf("add listing schema: %w", err)
	}
	input, err := compiler.Compile(schemaURL + "#/input")
	if err != nil {
		return nil, fmt.Errorf("compile input schema: %w", err)
	}
	patch, err := compiler.Compile(schemaURL + "#/patch")
	if err != nil {
		return nil, fmt.Errorf("compile patch schema: %w", err)
	}
	return &Validator{input: input, patch: patch}, nil
}

// MustNew is New for static initialisation.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateInput checks a full listing submission.
func (v *Validator) ValidateInput(in domain.ListingInput) error {
	return validate(v.input, in.Trimmed())
}

// ValidatePatch checks the fields present in a partial update.
func (v *Validator) ValidatePatch(p domain.ListingPatch) error {
	return validate(v.patch, p.Trimmed())
}

func validate(schema *jsonschema.Schema, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return err
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	details := leafMessages(ve, nil)
	sort.Strings(details)
	return &domain.ValidationError{Details: details}
}

func leafMessages(ve *jsonschema.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		if field == "" {
			return append(out, ve.Message)
		}
		return append(out, field+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		out = leafMessages(c, out)
	}
	return out
}
