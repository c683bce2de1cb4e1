package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"res/en.yaml": {Data: []byte("entry:\n  - Welcome\n  - Hello there\nexit:\n  - Goodbye!\n")},
		"res/de.yaml": {Data: []byte("entry:\n  - Willkommen\n")},
		"res/README":  {Data: []byte("ignored")},
	}
}

func TestEmbeddedResourcesCoverAllKeys(t *testing.T) {
	l, err := New("en", FirstSelector{}, zap.NewNop())
	require.NoError(t, err)

	keys := []string{KeyEntry, KeyNeedName, KeyNeedDescription, KeyWorking, KeyHelp, KeyError, KeyGenericReprompt, KeyExit}
	for _, key := range keys {
		assert.NotEqual(t, key, l.T("en-US", key), "missing text for %s", key)
	}
	assert.Equal(t, "Let me see what I can make for you.", l.T("en-GB", KeyWorking))
}

func TestT_LocaleMatching(t *testing.T) {
	l, err := NewFromFS(testFS(), "res", "en", FirstSelector{}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Willkommen", l.T("de-DE", KeyEntry))
	assert.Equal(t, "Welcome", l.T("en-US", KeyEntry))
	assert.Equal(t, "Welcome", l.T("fr-FR", KeyEntry), "unsupported locale uses fallback")
	assert.Equal(t, "Welcome", l.T("", KeyEntry))
	assert.Equal(t, "Welcome", l.T("not a locale", KeyEntry))
}

func TestT_MissingKeyFallsBack(t *testing.T) {
	l, err := NewFromFS(testFS(), "res", "en", FirstSelector{}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Goodbye!", l.T("de-DE", KeyExit), "key missing in de comes from en")
	assert.Equal(t, "no-such-key", l.T("en-US", "no-such-key"))
}

func TestT_RandomSelectionStaysWithinVariants(t *testing.T) {
	l, err := NewFromFS(testFS(), "res", "en", RandomSelector{}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assert.Contains(t, []string{"Welcome", "Hello there"}, l.T("en", KeyEntry))
	}
}

func TestNewFromFS_RequiresFallbackResources(t *testing.T) {
	_, err := NewFromFS(testFS(), "res", "pt-BR", nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewFromFS(testFS(), "res", "???", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestSelectorByName(t *testing.T) {
	s, err := SelectorByName("first")
	require.NoError(t, err)
	assert.Equal(t, "a", s.Pick([]string{"a", "b"}))

	_, err = SelectorByName("random")
	assert.NoError(t, err)

	_, err = SelectorByName("weighted")
	assert.Error(t, err)
}
