package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleObject(t *testing.T) {
	raws, err := Decode([]byte(`{"action":"add","group":"compras","idea":"comprar pan","makes_sense":true}`))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "compras", raws[0].Group)
	assert.Equal(t, "comprar pan", raws[0].Idea)
	assert.True(t, raws[0].Sensible())
}

func TestDecodeList(t *testing.T) {
	raws, err := Decode([]byte(`[
		{"action":"add","group":"compras","idea":"comprar leche","is_new_group":true},
		{"action":"add","group":"compras","idea":"comprar huevos"}
	]`))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.True(t, raws[0].IsNewGroup)
	assert.Equal(t, "comprar huevos", raws[1].Idea)
}

func TestDecodeRenameFields(t *testing.T) {
	raws, err := Decode([]byte(`{"action":"add","group":"página web","rename_group":{"old_name":"pagina","new_name":"página web"}}`))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	require.NotNil(t, raws[0].RenameGroup)
	assert.Equal(t, "pagina", raws[0].RenameGroup.OldName)
	assert.Equal(t, "página web", raws[0].RenameGroup.NewName)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNoIntent)

	_, err = Decode([]byte(`null`))
	assert.ErrorIs(t, err, ErrNoIntent)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"action":`))
	assert.Error(t, err)
}
