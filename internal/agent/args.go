package agent

import (
	"fmt"
	"math"
)

// arguments reads typed values out of a tool call's JSON arguments.
type arguments map[string]any

func (a arguments) optString(key string) (*string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

func (a arguments) requiredString(key string) (string, error) {
	s, err := a.optString(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	return *s, nil
}

func (a arguments) optNumber(key string) (*float64, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		return &n, nil
	case int:
		f := float64(n)
		return &f, nil
	case int64:
		f := float64(n)
		return &f, nil
	default:
		return nil, fmt.Errorf("%s must be a number", key)
	}
}

func (a arguments) requiredNumber(key string) (float64, error) {
	n, err := a.optNumber(key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return *n, nil
}

func (a arguments) optInt(key string) (*int, error) {
	n, err := a.optNumber(key)
	if err != nil || n == nil {
		return nil, err
	}
	if *n != math.Trunc(*n) || math.Abs(*n) > math.MaxInt32 {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	i := int(*n)
	return &i, nil
}

func (a arguments) requiredInt(key string) (int, error) {
	i, err := a.optInt(key)
	if err != nil {
		return 0, err
	}
	if i == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return *i, nil
}
