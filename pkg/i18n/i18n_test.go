package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestT_FallsBackToKey(t *testing.T) {
	if got := T(English, "hero.cta"); got != "Get Started" {
		t.Errorf("T(en, hero.cta) = %q", got)
	}
	if got := T(Korean, "hero.cta"); got != "지금 시작하기" {
		t.Errorf("T(ko, hero.cta) = %q", got)
	}
	if got := T(English, "cart.empty"); got != "cart.empty" {
		t.Errorf("missing key should return itself, got %q", got)
	}
	if got := T(Lang("fr"), "nav.home"); got != "nav.home" {
		t.Errorf("unknown language should return the key, got %q", got)
	}
}

func TestTables_HaveSameKeys(t *testing.T) {
	ko, _ := Table(Korean)
	en, _ := Table(English)
	if len(ko) != len(en) {
		t.Fatalf("ko has %d keys, en has %d", len(ko), len(en))
	}
	for k := range ko {
		if _, ok := en[k]; !ok {
			t.Errorf("key %q missing from en", k)
		}
	}
}

func TestTable_ReturnsCopy(t *testing.T) {
	tbl, ok := Table(English)
	if !ok {
		t.Fatal("expected English table")
	}
	tbl["nav.home"] = "changed"
	if T(English, "nav.home") != "Home" {
		t.Fatal("Table must not expose the shared map")
	}
	if _, ok := Table(Lang("de")); ok {
		t.Fatal("expected no table for de")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
		ok   bool
	}{
		{"ko", Korean, true},
		{"ko-KR", Korean, true},
		{"en-US", English, true},
		{"EN", English, true},
		{"ja", Lang("ja"), false},
		{"!!", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		accept string
		want   Lang
	}{
		{"query wins", "?lang=en", "ko-KR", English},
		{"invalid query ignored", "?lang=xx", "en-US,en;q=0.9", English},
		{"accept-language", "", "en-GB,en;q=0.8", English},
		{"accept-language korean", "", "ko-KR,ko;q=0.9,en;q=0.5", Korean},
		{"unsupported falls back", "", "fr-FR", Korean},
		{"nothing", "", "", Korean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := Negotiate(r, Korean); got != tt.want {
				t.Errorf("Negotiate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_StoresLanguage(t *testing.T) {
	var got Lang
	h := Middleware(Korean)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromCtx(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if got != English {
		t.Fatalf("expected en in context, got %q", got)
	}
	if w.Header().Get("Content-Language") != "en" {
		t.Fatalf("Content-Language = %q", w.Header().Get("Content-Language"))
	}
}

func TestPick(t *testing.T) {
	if got := Pick(English, "떡볶이", "Tteokbokki"); got != "Tteokbokki" {
		t.Errorf("got %q", got)
	}
	if got := Pick(English, "떡볶이", ""); got != "떡볶이" {
		t.Errorf("empty english name should fall back, got %q", got)
	}
	if got := Pick(Korean, "떡볶이", "Tteokbokki"); got != "떡볶이" {
		t.Errorf("got %q", got)
	}
}
