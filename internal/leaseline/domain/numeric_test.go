package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericUnmarshalIsLenient(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		defined bool
		want    string
	}{
		{name: "number", raw: `12.5`, defined: true, want: "12.5"},
		{name: "numeric_string", raw: `"1,250.75"`, defined: true, want: "1250.75"},
		{name: "null", raw: `null`, defined: false, want: "0"},
		{name: "garbage_string", raw: `"abc"`, defined: false, want: "0"},
		{name: "empty_string", raw: `""`, defined: false, want: "0"},
		{name: "bool", raw: `true`, defined: false, want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var line LeaseLine
			err := json.Unmarshal([]byte(`{"rate":`+tc.raw+`}`), &line)
			require.NoError(t, err)
			assert.Equal(t, tc.defined, line.Rate.Defined())
			assert.Equal(t, tc.want, line.Rate.String())
		})
	}
}

func TestNumericMarshal(t *testing.T) {
	b, err := json.Marshal(LeaseLine{Rate: ParseNumeric("7.25")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"rate":7.25`)
	assert.Contains(t, string(b), `"area":null`)
}
