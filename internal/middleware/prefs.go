// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/crm-documents/i18n"
)

type ctxKey string

const (
	ctxLang      ctxKey = "pref_lang"
	ctxRequestID ctxKey = "request_id"
)

// Prefs extracts the language preference (query > cookie > header) and
// stores it in context. A query-provided language is persisted in a cookie
// for about 30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		ctx := context.WithValue(r.Context(), ctxLang, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LangFrom returns the language preference from context or the default.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.Default
}
