package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestNormalizeLang(t *testing.T) {
	assert.Equal(t, "ua", NormalizeLang("UA"))
	assert.Equal(t, "pl", NormalizeLang(" pl "))
	assert.Equal(t, "en", NormalizeLang(""))
	assert.Equal(t, "en", NormalizeLang("de"))
}

func TestLocalizeRequestedLang(t *testing.T) {
	cache := datatypes.JSONMap{"ua": "Тема", "en": "Topic", "pl": "Temat"}
	assert.Equal(t, "Тема", Localize("base", cache, "ua"))
	assert.Equal(t, "Temat", Localize("base", cache, "pl"))
}

func TestLocalizeFallsBackToEnglish(t *testing.T) {
	cache := datatypes.JSONMap{"en": "Topic"}
	assert.Equal(t, "Topic", Localize("base", cache, "ua"))
}

func TestLocalizeFallsBackToFirstAvailable(t *testing.T) {
	cache := datatypes.JSONMap{"ua": "Тема"}
	assert.Equal(t, "Тема", Localize("base", cache, "pl"))
}

func TestLocalizeFallsBackToBase(t *testing.T) {
	assert.Equal(t, "base", Localize("base", nil, "ua"))
	assert.Equal(t, "base", Localize("base", datatypes.JSONMap{}, "en"))
	// blank entries don't count
	assert.Equal(t, "base", Localize("base", datatypes.JSONMap{"en": "  "}, "en"))
}

func TestLocalizeIgnoresNonStringEntries(t *testing.T) {
	cache := datatypes.JSONMap{"en": 42, "pl": "Temat"}
	assert.Equal(t, "Temat", Localize("base", cache, "en"))
}
