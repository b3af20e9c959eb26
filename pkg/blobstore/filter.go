package blobstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names a metadata attribute usable in a Filter.
type Field string

const (
	FieldID             Field = "id"
	FieldOwnerID        Field = "owner_id"
	FieldParentFolderID Field = "parent_folder_id"
	FieldType           Field = "type"
)

func (f Field) valid() bool {
	switch f {
	case FieldID, FieldOwnerID, FieldParentFolderID, FieldType:
		return true
	}
	return false
}

type op uint8

const (
	opAnd op = iota
	opOr
	opEq
)

// Filter is a boolean expression over record metadata: equality leaves
// combined with AND and OR. The zero Filter matches every record.
type Filter struct {
	field    Field
	value    string
	operands []Filter
	op       op
}

// Eq matches records whose field equals value.
func Eq(field Field, value string) Filter {
	return Filter{op: opEq, field: field, value: value}
}

// And matches records satisfying every operand. And() matches everything.
func And(operands ...Filter) Filter {
	return Filter{op: opAnd, operands: operands}
}

// Or matches records satisfying at least one operand. Or() matches nothing.
func Or(operands ...Filter) Filter {
	return Filter{op: opOr, operands: operands}
}

// Validate reports the first unknown field in the expression.
func (f Filter) Validate() error {
	if f.op == opEq {
		if !f.field.valid() {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.field)
		}
		return nil
	}
	for _, o := range f.operands {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Match evaluates the filter against r.
func (f Filter) Match(r Record) bool {
	switch f.op {
	case opEq:
		return r.value(f.field) == f.value
	case opOr:
		for _, o := range f.operands {
			if o.Match(r) {
				return true
			}
		}
		return false
	default:
		for _, o := range f.operands {
			if !o.Match(r) {
				return false
			}
		}
		return true
	}
}

// String renders the filter for logs.
func (f Filter) String() string {
	switch f.op {
	case opEq:
		return string(f.field) + "=" + strconv.Quote(f.value)
	case opOr:
		if len(f.operands) == 0 {
			return "FALSE"
		}
		return f.join(" OR ")
	default:
		if len(f.operands) == 0 {
			return "TRUE"
		}
		return f.join(" AND ")
	}
}

func (f Filter) join(sep string) string {
	parts := make([]string, len(f.operands))
	for i, o := range f.operands {
		parts[i] = o.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// sql renders the filter as a WHERE clause, appending bind values to args.
// Field names are validated beforehand, so they are safe to inline.
func (f Filter) sql(args *[]any) string {
	switch f.op {
	case opEq:
		*args = append(*args, f.value)
		return string(f.field) + " = $" + strconv.Itoa(len(*args))
	case opOr:
		if len(f.operands) == 0 {
			return "FALSE"
		}
		return f.joinSQL(" OR ", args)
	default:
		if len(f.operands) == 0 {
			return "TRUE"
		}
		return f.joinSQL(" AND ", args)
	}
}

func (f Filter) joinSQL(sep string, args *[]any) string {
	parts := make([]string, len(f.operands))
	for i, o := range f.operands {
		parts[i] = o.sql(args)
	}
	return "(" + strings.Join(parts, sep) + ")"
}
