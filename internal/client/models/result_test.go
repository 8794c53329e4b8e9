package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApiResult_ZeroValueIsIdle(t *testing.T) {
	var r ApiResult[int]
	assert.Equal(t, StatusIdle, r.Status())
}

func TestApiResult_Match(t *testing.T) {
	calls := map[string]int{}
	record := func(name string) func() { return func() { calls[name]++ } }

	Idle[string]().Match(record("idle"), record("loading"), nil, nil)
	Loading[string]().Match(record("idle"), record("loading"), nil, nil)
	Success("ok").Match(nil, nil, func(v string) {
		calls["success"]++
		assert.Equal(t, "ok", v)
	}, nil)
	boom := errors.New("boom")
	Failure[string](boom).Match(nil, nil, nil, func(err error) {
		calls["error"]++
		assert.ErrorIs(t, err, boom)
	})

	assert.Equal(t, map[string]int{"idle": 1, "loading": 1, "success": 1, "error": 1}, calls)
}

func TestApiResult_NilHandlersAreSafe(t *testing.T) {
	Success(1).Match(nil, nil, nil, nil)
	Failure[int](errors.New("x")).Match(nil, nil, nil, nil)
}
