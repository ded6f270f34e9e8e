// Package schema turns a model's final text into a typed structured response.
//
// Each response Kind has an embedded JSON schema. Parsing validates the text
// against it with gojsonschema and then decodes it strictly, so a caller gets
// either a fully populated record or a *ValidationError:
//
//	resp, err := schema.ParseShipment(text, reg.Names()...)
//	if errors.Is(err, domain.ErrFormatValidation) {
//	    // show the raw text instead
//	}
//
// A single fenced ```json block is accepted; any other surrounding text is not.
package schema
