package i18n

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/httpx"
)

type LanguagesResponse struct {
	Languages []Lang `json:"languages" example:"ko,en"`
	Default   Lang   `json:"default" example:"ko"`
} // @name LanguagesResponse

// Routes registers /i18n, the string tables the storefront UI loads.
func Routes(r chi.Router) {
	r.Route("/i18n", func(r chi.Router) {
		r.Get("/", listLanguages)
		r.Get("/{lang}", getTable)
	})
}

// listLanguages returns the supported languages.
//
//	@Summary	Supported languages
//	@Tags		i18n
//	@Produce	json
//	@Success	200	{object}	LanguagesResponse
//	@Router		/i18n [get]
func listLanguages(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, LanguagesResponse{Languages: Languages(), Default: Default})
}

// getTable returns one language's string table.
//
//	@Summary	String table
//	@Tags		i18n
//	@Produce	json
//	@Param		lang	path		string	true	"ko or en"
//	@Success	200		{object}	map[string]string
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/i18n/{lang} [get]
func getTable(w http.ResponseWriter, r *http.Request) {
	t, ok := Table(Lang(chi.URLParam(r, "lang")))
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "unsupported language")
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}
