// Package i18n holds the storefront's UI string tables and resolves the
// language of a request.
//
// Two languages are supported, Korean (the default) and English. Lookups of a
// missing key return the key itself so untranslated strings stay visible.
package i18n

import (
	"context"
	"net/http"
	"slices"

	"golang.org/x/text/language"
)

// Lang is a supported UI language.
type Lang string

const (
	Korean  Lang = "ko"
	English Lang = "en"
)

// Default is used when nothing in the request selects a language.
const Default = Korean

var (
	supported = []Lang{Korean, English}
	matcher   = language.NewMatcher([]language.Tag{language.Korean, language.English})
)

var tables = map[Lang]map[string]string{
	Korean: {
		"nav.home":          "홈",
		"nav.shop":          "쇼핑",
		"nav.nft":           "NFT",
		"nav.about":         "소개",
		"hero.title":        "매운맛의 새로운 차원",
		"hero.subtitle":     "프리미엄 K-Food와 블록체인의 만남. 미각을 깨우는 매운맛과 디지털 자산의 특별한 경험을 만나보세요.",
		"hero.cta":          "지금 시작하기",
		"hero.learnMore":    "더 알아보기",
		"featured.title":    "인기 상품",
		"featured.subtitle": "SpicyJump가 엄선한 프리미엄 매운맛 컬렉션",
		"nft.title":         "SpicyJump NFT",
		"nft.subtitle":      "매운맛을 즐기는 새로운 방법, 멤버십 혜택과 함께하세요",
		"footer.rights":     "© 2024 SpicyJump. All rights reserved.",
	},
	English: {
		"nav.home":          "Home",
		"nav.shop":          "Shop",
		"nav.nft":           "NFT",
		"nav.about":         "About",
		"hero.title":        "A New Dimension of Spice",
		"hero.subtitle":     "Premium K-Food meets Blockchain. Experience the awakening taste of spice and special digital assets.",
		"hero.cta":          "Get Started",
		"hero.learnMore":    "Learn More",
		"featured.title":    "Featured Products",
		"featured.subtitle": "Premium spicy collection curated by SpicyJump",
		"nft.title":         "SpicyJump NFT",
		"nft.subtitle":      "A new way to enjoy spice, join with membership benefits",
		"footer.rights":     "© 2024 SpicyJump. All rights reserved.",
	},
}

// Languages lists the supported languages, default first.
func Languages() []Lang {
	return slices.Clone(supported)
}

// Parse returns the Lang for s ("ko", "en", "ko-KR", "en-US", ...).
func Parse(s string) (Lang, bool) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	l := Lang(base.String())
	return l, slices.Contains(supported, l)
}

// T returns the text for key in lang, or key when there is none.
func T(lang Lang, key string) string {
	if s, ok := tables[lang][key]; ok {
		return s
	}
	return key
}

// Table returns a copy of the string table for lang.
func Table(lang Lang) (map[string]string, bool) {
	t, ok := tables[lang]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out, true
}

// Negotiate picks the request language: the ?lang= query parameter, then
// Accept-Language, then fallback.
func Negotiate(r *http.Request, fallback Lang) Lang {
	if q := r.URL.Query().Get("lang"); q != "" {
		if l, ok := Parse(q); ok {
			return l
		}
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		tags, _, err := language.ParseAcceptLanguage(h)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return supported[idx]
			}
		}
	}
	return fallback
}

type ctxKey struct{}

// WithLang returns ctx carrying lang.
func WithLang(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromCtx returns the request language, or Default.
func FromCtx(ctx context.Context) Lang {
	if l, ok := ctx.Value(ctxKey{}).(Lang); ok {
		return l
	}
	return Default
}

// Middleware negotiates the language of each request and stores it in the
// request context.
func Middleware(fallback Lang) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := Negotiate(r, fallback)
			w.Header().Set("Content-Language", string(lang))
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

// Pick returns en when lang is English and en is non-empty, otherwise ko.
// Catalog and order responses use it for their localized display fields.
func Pick(lang Lang, ko, en string) string {
	if lang == English && en != "" {
		return en
	}
	return ko
}
