package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/models"
)

// Parse reads all JSON data from reader and converts it into an IntermediateRepresentation
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON value. Object member order is preserved.
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	// fastjson.Parse is lenient about some malformed numbers, Validate is not.
	if err := fastjson.ValidateBytes(data); err != nil {
		return models.IntermediateRepresentation{}, syntaxError(err)
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return models.IntermediateRepresentation{}, syntaxError(err)
	}

	root, err := convert(v)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to decode JSON", err)
	}

	return models.IntermediateRepresentation{
		Root:        root,
		RootIsArray: root.Kind == models.JSONArray,
	}, nil
}

// MaxDepth is the deepest nesting fastjson will parse.
const MaxDepth = fastjson.MaxDepth

// syntaxError maps a fastjson failure onto a parsing error. Exceeding the
// nesting limit is valid JSON, so it is reported as an input error with a
// short message instead of fastjson's per-level error chain.
func syntaxError(err error) error {
	if strings.Contains(err.Error(), "too big depth") {
		return errors.NewInputError(
			fmt.Sprintf("JSON nests deeper than %d levels", MaxDepth),
			errors.ErrTooDeep,
		)
	}
	return errors.NewParsingError(fmt.Sprintf("JSON syntax error: %v", err), errors.ErrInvalidJSON)
}

// convert copies a fastjson value into the model types. The fastjson value is only
// valid while its parser is alive, so nothing may keep a reference to it.
func convert(v *fastjson.Value) (*models.JSONValue, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return &models.JSONValue{Kind: models.JSONNull}, nil
	case fastjson.TypeTrue:
		return &models.JSONValue{Kind: models.JSONBool, Bool: true}, nil
	case fastjson.TypeFalse:
		return &models.JSONValue{Kind: models.JSONBool, Bool: false}, nil
	case fastjson.TypeNumber:
		// MarshalTo emits the number literal exactly as it appeared in the input.
		return &models.JSONValue{Kind: models.JSONNumber, Text: string(v.MarshalTo(nil))}, nil
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return &models.JSONValue{Kind: models.JSONString, Text: string(s)}, nil
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		arr := make([]*models.JSONValue, len(items))
		for i, item := range items {
			converted, err := convert(item)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr[i] = converted
		}
		return &models.JSONValue{Kind: models.JSONArray, Array: arr}, nil
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		return convertObject(o)
	default:
		return nil, fmt.Errorf("unexpected JSON value type: %s", v.Type())
	}
}

func convertObject(o *fastjson.Object) (*models.JSONValue, error) {
	members := make([]models.JSONMember, 0, o.Len())
	index := make(map[string]int, o.Len())

	var visitErr error
	o.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		converted, err := convert(v)
		if err != nil {
			visitErr = fmt.Errorf("member %q: %w", key, err)
			return
		}

		k := string(key)
		// A repeated key keeps its first position and takes the last value.
		if i, ok := index[k]; ok {
			members[i].Value = converted
			return
		}
		index[k] = len(members)
		members = append(members, models.JSONMember{Key: k, Value: converted})
	})
	if visitErr != nil {
		return nil, visitErr
	}

	return &models.JSONValue{Kind: models.JSONObject, Object: members}, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return ParseBytes(data)
}

// ReadFile reads a JSON document from disk, mapping the common failure
// modes onto input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
