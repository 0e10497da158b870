package utils

import (
	"sort"
	"strings"

	"gorm.io/datatypes"
)

// SupportedLangs lists the language codes content can be localized into
var SupportedLangs = []string{"ua", "en", "pl"}

// IsSupportedLang reports whether the code is one the platform localizes into
func IsSupportedLang(lang string) bool {
	for _, l := range SupportedLangs {
		if l == lang {
			return true
		}
	}
	return false
}

// NormalizeLang lowercases a language code and maps an unknown or empty
// value to "en"
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !IsSupportedLang(lang) {
		return "en"
	}
	return lang
}

// Localize resolves a localized string from a cache field.
// Fallback chain: requested language -> en -> first available cache
// entry (in stable key order) -> the stored base value.
func Localize(base string, cache datatypes.JSONMap, lang string) string {
	if len(cache) == 0 {
		return base
	}

	if s := cacheStr(cache, lang); s != "" {
		return s
	}
	if s := cacheStr(cache, "en"); s != "" {
		return s
	}

	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := cacheStr(cache, k); s != "" {
			return s
		}
	}

	return base
}

func cacheStr(cache datatypes.JSONMap, key string) string {
	v, ok := cache[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
