package utils_test

import (
	"testing"

	"github.com/jrsteele09/acservice-dashboard/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, 7, utils.Value(utils.Ptr(7)))
}

func TestOptionalString(t *testing.T) {
	require.Nil(t, utils.OptionalString(""))
	require.Nil(t, utils.OptionalString("   "))

	p := utils.OptionalString(" Jl. Melati 12 ")
	require.NotNil(t, p)
	require.Equal(t, "Jl. Melati 12", *p)
}
