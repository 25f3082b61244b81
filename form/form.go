// Package form describes entity input forms as data. A Descriptor lists the
// fields and their validators; Validate checks a set of values against it and
// Ask renders it as a terminal questionnaire.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/shopspring/decimal"

	"clientbook/model"
	"clientbook/records"
)

// Field is one input of a form.
type Field struct {
	Name     string
	Label    string
	Required bool
	// Check validates a non-empty value; nil accepts anything.
	Check func(string) error
}

// Descriptor is an ordered list of fields.
type Descriptor struct {
	Title  string
	Fields []Field
}

// Customer is the form for a new customer.
var Customer = Descriptor{
	Title: "New customer",
	Fields: []Field{
		{Name: "full_name", Label: "Full name", Required: true},
		{Name: "contact_info", Label: "Contact info", Required: true},
		{Name: "notes", Label: "Notes"},
	},
}

// Order is the form for a new order.
var Order = Descriptor{
	Title: "New order",
	Fields: []Field{
		{Name: "customer_id", Label: "Customer ID", Required: true, Check: ID},
		{Name: "description", Label: "Description", Required: true},
		{Name: "amount", Label: "Amount", Required: true, Check: Amount},
	},
}

// ID accepts a positive integer.
func ID(s string) error {
	if n, err := strconv.ParseUint(s, 10, 64); err != nil || n == 0 {
		return model.Invalid("id", fmt.Sprintf("%q is not a positive integer", s))
	}
	return nil
}

// Amount accepts a decimal number that records.ValidateAmount allows.
func Amount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return model.Invalid("amount", fmt.Sprintf("%q is not a number", s))
	}
	return records.ValidateAmount(d.InexactFloat64())
}

// check validates one field value.
func (f Field) check(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		if f.Required {
			return model.Invalid(f.Name, "must not be empty")
		}
		return nil
	}
	if f.Check == nil {
		return nil
	}
	if err := f.Check(v); err != nil {
		// report under the form's field name
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return model.Invalid(f.Name, verr.Reason)
		}
		return err
	}
	return nil
}

// Validate returns the first field error in declaration order.
func (d Descriptor) Validate(values map[string]string) error {
	for _, f := range d.Fields {
		if err := f.check(values[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Ask prompts for every field in order and returns the answers keyed by
// field name. Invalid answers are re-asked by the prompt.
func Ask(d Descriptor, opts ...survey.AskOpt) (map[string]string, error) {
	out := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		var answer string
		validator := func(ans interface{}) error {
			s, _ := ans.(string)
			return f.check(s)
		}
		label := f.Label
		if f.Required {
			label += " *"
		}
		fieldOpts := append([]survey.AskOpt{survey.WithValidator(validator)}, opts...)
		if err := survey.AskOne(&survey.Input{Message: label}, &answer, fieldOpts...); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Title, err)
		}
		out[f.Name] = answer
	}
	return out, nil
}
