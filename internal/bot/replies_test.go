package bot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRepliesEmptyPathIsDefault(t *testing.T) {
	replies, err := LoadReplies("")
	require.NoError(t, err)
	assert.Equal(t, DefaultReplies(), replies)
}

func TestLoadRepliesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replies.yaml")
	content := `
keyword: "  Caçamba "
prompt: "Oi! Digite 'caçamba'."
options:
  - "1 Entulho"
  - "2 Terra"
menu_footer: "{count} bairros atendidos"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	replies, err := LoadReplies(path)
	require.NoError(t, err)

	defaults := DefaultReplies()
	assert.Equal(t, "Caçamba", replies.Keyword)
	assert.Equal(t, "Oi! Digite 'caçamba'.", replies.Prompt)
	assert.Equal(t, defaults.MenuTitle, replies.MenuTitle)
	assert.Equal(t, defaults.MenuIntro, replies.MenuIntro)
	assert.Equal(t, []string{"1 Entulho", "2 Terra"}, replies.Options)
	assert.Equal(t, defaults.MenuTitle+"\n\n"+defaults.MenuIntro+"\n1 Entulho\n2 Terra\n\n7 bairros atendidos", replies.Menu(7))
	assert.True(t, replies.Matches("quero uma CAÇAMBA"))
	assert.False(t, replies.Matches("quero um orçamento"))
}

func TestLoadRepliesErrorsKeepDefaults(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		replies, err := LoadReplies(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
		assert.Equal(t, DefaultReplies(), replies)
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "replies.yaml")
		require.NoError(t, os.WriteFile(path, []byte("options: [unterminated"), 0o600))

		replies, err := LoadReplies(path)
		assert.Error(t, err)
		assert.Equal(t, DefaultReplies(), replies)
	})
}

func TestMatchesEmptyKeyword(t *testing.T) {
	assert.False(t, Replies{}.Matches("anything"))
}

func TestMenuCountZero(t *testing.T) {
	menu := DefaultReplies().Menu(0)
	assert.Contains(t, menu, "*Obs:* Valores variam por bairro (0 cadastrados).")
}
