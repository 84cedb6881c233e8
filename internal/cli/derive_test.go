package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Text(t *testing.T) {
	out, _, err := execute(t, "derive", "x*sin(x)", "--order", "2")
	require.NoError(t, err)
	assert.Equal(t, "d0: x*sin(x)\nd1: sin(x) + x*cos(x)\nd2: 2*cos(x) - x*sin(x)\n", out)
}

func TestDerive_DefaultOrder(t *testing.T) {
	out, _, err := execute(t, "derive", "x^3")
	require.NoError(t, err)
	assert.Equal(t, "d0: x^3\nd1: 3*x^2\n", out)
}

func TestDerive_LaTeX(t *testing.T) {
	out, _, err := execute(t, "derive", "sin(x)", "--order", "1", "--latex")
	require.NoError(t, err)
	assert.Equal(t, "d0: \\sin\\left(x\\right)\nd1: \\cos\\left(x\\right)\n", out)
}

func TestDerive_JSON(t *testing.T) {
	out, _, err := execute(t, "derive", "exp(2x)", "--order", "2", "--format", "json")
	require.NoError(t, err)

	var data DeriveOutput
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "exp(2*x)", data.Expression)
	require.Len(t, data.Derivatives, 3)
	assert.Equal(t, "2*exp(2*x)", data.Derivatives[1].Text)
	assert.Equal(t, "4*exp(2*x)", data.Derivatives[2].Text)
	assert.Empty(t, data.Derivatives[2].LaTeX)
	for k, d := range data.Derivatives {
		assert.Equal(t, k, d.Order)
		assert.Positive(t, d.Nodes)
	}
}

func TestDerive_Errors(t *testing.T) {
	out, _, err := execute(t, "derive", "sin(", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeParse, decodeResponse(t, out, nil).Error.Code)

	out, _, err = execute(t, "derive", "sin(x)", "--order=-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
	assert.Contains(t, out, "INVALID_ORDER")

	_, _, err = execute(t, "derive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
