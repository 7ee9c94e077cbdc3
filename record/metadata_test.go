package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeys(t *testing.T) {
	t.Run("NoCollisions", func(t *testing.T) {
		out := ResolveKeys([]Entry{
			{Name: "width", Value: Int(640)},
			{Name: "height", Value: Int(480)},
			{Name: "format", Value: String("rgb8")},
		})

		require.Len(t, out, 3)
		assert.Equal(t, Int(640), out["width"])
		assert.Equal(t, Int(480), out["height"])
		assert.Equal(t, String("rgb8"), out["format"])
	})

	t.Run("FirstCollisionRekeysBoth", func(t *testing.T) {
		out := ResolveKeys([]Entry{
			{Name: "value", Value: Int(1)},
			{Name: "value", Value: String("one")},
		})

		require.Len(t, out, 2)
		assert.NotContains(t, out, "value")
		assert.Equal(t, Int(1), out["value<int64>"])
		assert.Equal(t, String("one"), out["value<string>"])
	})

	t.Run("AmbiguousNameStaysTyped", func(t *testing.T) {
		out := ResolveKeys([]Entry{
			{Name: "value", Value: Int(1)},
			{Name: "value", Value: String("one")},
			{Name: "value", Value: Float(1.0)},
		})

		require.Len(t, out, 3)
		assert.Equal(t, Float(1.0), out["value<float64>"])
	})

	t.Run("BracketEscalation", func(t *testing.T) {
		out := ResolveKeys([]Entry{
			{Name: "value", Value: Int(1)},
			{Name: "value", Value: Int(2)},
			{Name: "value", Value: Int(3)},
		})

		require.Len(t, out, 3)
		assert.Equal(t, Int(1), out["value<int64>"])
		assert.Equal(t, Int(2), out["value<<int64>>"])
		assert.Equal(t, Int(3), out["value<<<int64>>>"])
	})

	t.Run("LiteralTypedNameDoesNotClash", func(t *testing.T) {
		out := ResolveKeys([]Entry{
			{Name: "x", Value: Int(1)},
			{Name: "x<int64>", Value: Bool(true)},
			{Name: "x", Value: Int(2)},
		})

		require.Len(t, out, 3)
		assert.Equal(t, Bool(true), out["x<int64>"])
		assert.Equal(t, Int(1), out["x<<int64>>"])
		assert.Equal(t, Int(2), out["x<<<int64>>>"])
	})

	t.Run("OutputSizeEqualsInputSize", func(t *testing.T) {
		entries := []Entry{
			{Name: "a", Value: Int(1)},
			{Name: "b", Value: Int(2)},
			{Name: "a", Value: String("s")},
			{Name: "a", Value: Bool(true)},
			{Name: "b", Value: Int(3)},
			{Name: "c", Value: Bytes([]byte{1})},
		}

		out := ResolveKeys(entries)
		assert.Len(t, out, len(entries))
	})

	t.Run("Deterministic", func(t *testing.T) {
		entries := []Entry{
			{Name: "a", Value: Int(1)},
			{Name: "a", Value: Float(2)},
			{Name: "a", Value: String("x")},
		}

		first := ResolveKeys(entries)
		second := ResolveKeys(entries)
		assert.Equal(t, first, second)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, ResolveKeys(nil))
	})
}

func TestValueTypeName(t *testing.T) {
	assert.Equal(t, "bool", Bool(true).TypeName())
	assert.Equal(t, "int64", Int(1).TypeName())
	assert.Equal(t, "float64", Float(1).TypeName())
	assert.Equal(t, "string", String("").TypeName())
	assert.Equal(t, "bytes", Bytes(nil).TypeName())
	assert.Equal(t, "invalid", Value{}.TypeName())
}

func TestValueAny(t *testing.T) {
	assert.Equal(t, true, Bool(true).Any())
	assert.Equal(t, int64(7), Int(7).Any())
	assert.Equal(t, 0.5, Float(0.5).Any())
	assert.Equal(t, "s", String("s").Any())
	assert.Equal(t, []byte{1, 2}, Bytes([]byte{1, 2}).Any())
	assert.Nil(t, Value{}.Any())
}
