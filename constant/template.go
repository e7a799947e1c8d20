package constant

// Lua provider contract. A script must define these globals.
const (
	ListFn   = "List"
	SearchFn = "Search"
	DetailFn = "Detail"

	ProviderIDVar     = "ID"
	ProviderDomainVar = "DOMAIN"
	CategoryMoviesVar = "CATEGORY_MOVIES"
	CategorySeriesVar = "CATEGORY_SERIES"
)

// SourceTemplate is a Go text/template for scaffolding new Lua provider files.
const SourceTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias item { title: string, url: string, thumbnail: string|nil, backdrop: string|nil, quality: string|nil, year: number|nil, rating: string|nil }
---@alias detail { title: string, alt_title: string|nil, poster: string|nil, backdrop: string|nil, description: string|nil, year: number|nil, rating: string|nil, country: string|nil, link: string|nil }


----- IMPORTS -----
local html = require("html")
--- END IMPORTS ---



----- VARIABLES -----
{{ .IDVar }} = "{{ .ID }}"
{{ .DomainVar }} = "{{ .Domain }}"
{{ .MoviesVar }} = "{{ .URL }}/movies/"
{{ .SeriesVar }} = "{{ .URL }}/tv-series/"
--- END VARIABLES ---



----- MAIN -----

--- Lists items of a category page.
-- @param category string Category URL
-- @param page number Page index starting at 1
-- @return item[] Table of items
function {{ .ListFn }}(category, page)
	local url = category
	if page > 1 then
		url = category .. "page/" .. page .. "/"
	end

	local body = http_tls.get(url)
	local doc = html.parse(body)
	local items = {}

	doc:find("article a[title]"):each(function(_, a)
		table.insert(items, { title = a:attr("title"), url = a:attr("href") })
	end)

	return items
end


--- Searches for items with given query.
-- @param query string Query to search for
-- @return item[] Table of items
function {{ .SearchFn }}(query)
	return {{ .ListFn }}("{{ .URL }}/?s=" .. (query:gsub(" ", "+")), 1)
end


--- Resolves a detail page.
-- @param url string Detail page URL
-- @return detail
function {{ .DetailFn }}(url)
	local doc = html.parse(http_tls.get(url))
	return {
		title = doc:find("h1"):first():text(),
		link = doc:find("a[href*='fshare.vn']"):first():attr("href"),
	}
end

--- END MAIN ---
`
