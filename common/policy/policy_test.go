package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyExpressionDisablesPolicy(t *testing.T) {
	p, err := Compile("")
	require.NoError(t, err)
	require.Nil(t, p)

	ok, err := p.Accept(FileInput{Filename: "a.jpg", Size: 1 << 30})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompile_InvalidExpression(t *testing.T) {
	_, err := Compile("file.size <<< 1")
	require.Error(t, err)
}

func TestAccept(t *testing.T) {
	p, err := Compile(`file.size < 1000 && file.mime_type.startsWith("image/")`)
	require.NoError(t, err)

	ok, err := p.Accept(FileInput{Filename: "small.jpg", MimeType: "image/jpeg", Size: 500})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Accept(FileInput{Filename: "big.jpg", MimeType: "image/jpeg", Size: 5000})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Accept(FileInput{Filename: "doc.pdf", MimeType: "application/pdf", Size: 10})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccept_CanInspectGroupAndStage(t *testing.T) {
	p, err := Compile(`file.stage == "ENTRY" || file.group_id.startsWith("VIP-")`)
	require.NoError(t, err)

	ok, err := p.Accept(FileInput{GroupID: "ORD-1", Stage: "ENTRY"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Accept(FileInput{GroupID: "ORD-1", Stage: "EXIT"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Accept(FileInput{GroupID: "VIP-9", Stage: "EXIT"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccept_NonBooleanResult(t *testing.T) {
	p, err := Compile(`file.size`)
	require.NoError(t, err)

	_, err = p.Accept(FileInput{Size: 42})
	require.Error(t, err)
}
