// Package custom runs user Lua scripts as catalog providers.
package custom

import (
	"fmt"
	"net/http"

	libs "github.com/metafates/mangal-lua-libs"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/internal/scraper"
	"github.com/raidenhub/phim/util"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName derives the provider id of a script from its basename.
func IDfromName(name string) string {
	return name + " custom"
}

// Load executes the script at path and validates the provider contract.
// client backs the http_tls module.
func Load(path string, client *http.Client) (*Provider, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerTLSClient(state, client)

	if err := scraper.PreCompileAndLoad(state, path); err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	for _, fn := range []string{constant.ListFn, constant.SearchFn, constant.DetailFn} {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			state.Close()
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return newProvider(name, state), nil
}
