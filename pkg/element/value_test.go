package element

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	testCases := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null(), "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"integer", Number(16), "16"},
		{"fraction", Number(0.05), "0.05"},
		{"negative zero", Number(math.Copysign(0, -1)), "0"},
		{"large", Number(1e21), "1e+21"},
		{"tiny", Number(1e-7), "1e-7"},
		{"nan", Number(math.NaN()), "NaN"},
		{"infinity", Number(math.Inf(-1)), "-Infinity"},
		{"string", String("red"), "red"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.value.String())
		})
	}
}

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"", 0},
		{"  42 ", 42},
		{"1.5", 1.5},
		{"-3", -3},
		{"1e3", 1000},
		{"0x1A", 26},
		{"0b101", 5},
		{"Infinity", math.Inf(1)},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseNumber(tc.input))
		})
	}

	for _, bad := range []string{"16px", "abc", "inf", "NaN", "1_000", "0xZZ", "."} {
		assert.True(t, math.IsNaN(ParseNumber(bad)), bad)
	}
}

func TestValueFloat(t *testing.T) {
	assert.Equal(t, 0.0, Null().Float())
	assert.Equal(t, 1.0, Bool(true).Float())
	assert.Equal(t, 12.0, String("12").Float())
	assert.True(t, math.IsNaN(String("12px").Float()))
}

func TestValueTruthy(t *testing.T) {
	for _, v := range []Value{Null(), Bool(false), Number(0), Number(math.NaN()), String("")} {
		assert.False(t, v.Truthy(), v.String())
	}
	for _, v := range []Value{Bool(true), Number(-1), String("0")} {
		assert.True(t, v.Truthy(), v.String())
	}
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, Null(), ValueOf(nil))
	assert.Equal(t, Bool(true), ValueOf(true))
	assert.Equal(t, Number(3), ValueOf(3))
	assert.Equal(t, Number(2.5), ValueOf(float32(2.5)))
	assert.Equal(t, String("x"), ValueOf("x"))
	assert.Equal(t, Number(7), ValueOf(json.Number("7")))
	assert.Equal(t, String("[1 2]"), ValueOf([]int{1, 2}))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Number(math.NaN()).Equal(Number(math.NaN())))
	assert.False(t, Number(1).Equal(String("1")))
	assert.True(t, String("a").Equal(String("a")))
	assert.True(t, Null().Equal(Value{}))
}

func TestValueJSON(t *testing.T) {
	values := []Value{Null(), Bool(false), Number(1.25), String(`say "hi"`)}
	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,false,1.25,"say \"hi\""]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, values, decoded)

	var obj Value
	require.NoError(t, json.Unmarshal([]byte(`{ "a": 1 }`), &obj))
	assert.Equal(t, String(`{"a":1}`), obj)

	data, err = json.Marshal(Number(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
