package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/model"
)

// Evaluate reports whether response answers q correctly.
//
// Rules by question type:
//   - multiple_choice: exact equality (numbers compare by value)
//   - true_false: case-insensitive compare for textual responses, truthiness otherwise
//   - fill_in: trimmed, case-insensitive string equality
//   - numeric: |response - answer| <= tolerance (default model.DefaultTolerance)
//
// A question without a correct answer, or of an unrecognized type, is never
// answered correctly. A value that cannot be converted scores incorrect; the
// conversion error is returned for logging only.
func Evaluate(q *model.Question, response any) (bool, error) {
	const op = "assessment.Evaluate"
	if q.CorrectAnswer == nil {
		return false, nil
	}

	switch q.QuestionType {
	case model.QuestionMultipleChoice:
		return equalValues(response, q.CorrectAnswer), nil

	case model.QuestionTrueFalse:
		if s, ok := response.(string); ok {
			return strings.ToLower(s) == strings.ToLower(fmt.Sprint(q.CorrectAnswer)), nil
		}
		return truthy(response) == truthy(q.CorrectAnswer), nil

	case model.QuestionFillIn:
		return normalizeText(response) == normalizeText(q.CorrectAnswer), nil

	case model.QuestionNumeric:
		got, err := toFloat(response)
		if err != nil {
			return false, apperr.Conversion(op, fmt.Errorf("response: %w", err))
		}
		want, err := toFloat(q.CorrectAnswer)
		if err != nil {
			return false, apperr.Conversion(op, fmt.Errorf("correct answer: %w", err))
		}
		tolerance := model.DefaultTolerance
		if q.Tolerance != nil {
			tolerance = *q.Tolerance
		}
		return math.Abs(got-want) <= tolerance, nil

	default:
		return false, nil
	}
}

func normalizeText(v any) string {
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}

// equalValues compares two decoded values. Numbers compare by value so that
// 3 and 3.0 are equal regardless of how they were decoded.
func equalValues(a, b any) bool {
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// number converts numeric kinds to float64. Strings are not numbers here.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case nil, bool, string:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// toFloat converts a number or numeric string to float64.
func toFloat(v any) (float64, error) {
	if f, ok := number(v); ok {
		return f, nil
	}
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to a number", v)
	}
}

// truthy reports the truth value of a decoded value: false, zero, empty and
// nil are false.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
