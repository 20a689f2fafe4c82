package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Coordinate
		wantErr bool
	}{
		{"three parts", "org.ow2.asm:asm:9.7", Coordinate{Group: "org.ow2.asm", Name: "asm", Version: "9.7"}, false},
		{"with classifier", "com.example:lib:1.0:sources", Coordinate{Group: "com.example", Name: "lib", Version: "1.0", Classifier: "sources"}, false},
		{"surrounding space", "  a:b:c ", Coordinate{Group: "a", Name: "b", Version: "c"}, false},
		{"two parts", "a:b", Coordinate{}, true},
		{"five parts", "a:b:c:d:e", Coordinate{}, true},
		{"empty part", "a::c", Coordinate{}, true},
		{"empty", "", Coordinate{}, true},
		{"slash", "a/b:c:d", Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCoordinate)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordinate_Layout(t *testing.T) {
	c := Coordinate{Group: "org.ow2.asm", Name: "asm", Version: "9.7"}
	assert.Equal(t, "org.ow2.asm:asm:9.7", c.String())
	assert.Equal(t, "asm-9.7.jar", c.FileName())
	assert.Equal(t, "org/ow2/asm/asm/9.7/asm-9.7.jar", c.RelPath())

	c.Classifier = "tests"
	assert.Equal(t, "org.ow2.asm:asm:9.7:tests", c.String())
	assert.Equal(t, "asm-9.7-tests.jar", c.FileName())
}

func TestFetchError_AggregatesCauses(t *testing.T) {
	first := errors.New("connection refused")
	second := errors.New("status 404")

	err := &FetchError{
		Coordinate: Coordinate{Group: "g", Name: "n", Version: "1"},
		Failures: []MirrorFailure{
			{Mirror: "https://one.example", Err: first},
			{Mirror: "https://two.example", Err: second},
		},
	}

	assert.ErrorIs(t, err, ErrArtifactFetchFailed)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Contains(t, err.Error(), "https://one.example")
	assert.Contains(t, err.Error(), "status 404")
}
