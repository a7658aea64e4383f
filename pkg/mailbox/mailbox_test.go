package mailbox_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailbox"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("bare address", func(t *testing.T) {
		t.Parallel()

		m, err := mailbox.Parse("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", m.Address)
		assert.Empty(t, m.Name)
	})

	t.Run("display name form", func(t *testing.T) {
		t.Parallel()

		m, err := mailbox.Parse(`"Alice Smith" <alice@example.com>`)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", m.Address)
		assert.Equal(t, "Alice Smith", m.Name)
	})

	t.Run("unquoted display name", func(t *testing.T) {
		t.Parallel()

		m, err := mailbox.Parse("Alice <alice@example.com>")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", m.Address)
		assert.Equal(t, "Alice", m.Name)
	})

	t.Run("invalid pieces", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "   ", "not-an-address", "missing@", "@example.com", "a b@example.com"} {
			_, err := mailbox.Parse(raw)
			require.ErrorIs(t, err, mailbox.ErrInvalidMailbox, "input %q", raw)
		}
	})
}

func TestMailboxString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice@example.com", mailbox.Mailbox{Address: "alice@example.com"}.String())
	assert.Equal(t, "Alice <alice@example.com>", mailbox.Mailbox{Name: "Alice", Address: "alice@example.com"}.String())
}

func TestMustParse(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		mailbox.MustParse("alice@example.com")
	})
	assert.Panics(t, func() {
		mailbox.MustParse("nope")
	})
}

func TestParseList(t *testing.T) {
	t.Parallel()

	t.Run("preserves order and skips empty pieces", func(t *testing.T) {
		t.Parallel()

		list, err := mailbox.ParseList("a@x.com, ,b@y.com,")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "a@x.com", list[0].Address)
		assert.Equal(t, "b@y.com", list[1].Address)
	})

	t.Run("single recipient", func(t *testing.T) {
		t.Parallel()

		list, err := mailbox.ParseList("alice@example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "alice@example.com", list[0].Address)
	})

	t.Run("mixed display names", func(t *testing.T) {
		t.Parallel()

		list, err := mailbox.ParseList(`"Ops Team" <ops@example.com>, alice@example.com`)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Ops Team", list[0].Name)
		assert.Equal(t, "ops@example.com", list[0].Address)
		assert.Empty(t, list[1].Name)
	})

	t.Run("empty inputs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", ",,,", " , , "} {
			_, err := mailbox.ParseList(raw)
			require.ErrorIs(t, err, mailbox.ErrEmptyRecipientList, "input %q", raw)
		}
	})

	t.Run("one bad entry fails the whole list", func(t *testing.T) {
		t.Parallel()

		_, err := mailbox.ParseList("a@x.com, not-an-address, b@y.com")
		require.ErrorIs(t, err, mailbox.ErrInvalidMailbox)
	})

	t.Run("duplicates are allowed", func(t *testing.T) {
		t.Parallel()

		list, err := mailbox.ParseList("a@x.com,a@x.com")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
