package custom

import (
	"context"
	"fmt"
	"sync"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/media"
	lua "github.com/yuin/gopher-lua"
)

// Provider adapts a loaded script. An LState is single-threaded, so calls are serialized.
type Provider struct {
	name   string
	id     string
	domain string
	movies string
	series string

	mu    sync.Mutex
	state *lua.LState
}

func newProvider(name string, state *lua.LState) *Provider {
	global := func(key, def string) string {
		if v := state.GetGlobal(key); v.Type() == lua.LTString {
			return v.String()
		}
		return def
	}

	return &Provider{
		name:   name,
		id:     global(constant.ProviderIDVar, IDfromName(name)),
		domain: global(constant.ProviderDomainVar, ""),
		movies: global(constant.CategoryMoviesVar, ""),
		series: global(constant.CategorySeriesVar, ""),
		state:  state,
	}
}

func (p *Provider) Name() string   { return p.name }
func (p *Provider) ID() string     { return p.id }
func (p *Provider) Domain() string { return p.domain }

func (p *Provider) Category(kind media.Kind) string {
	if kind == media.Series {
		return p.series
	}
	return p.movies
}

func (p *Provider) List(ctx context.Context, category string, page int) ([]*media.Item, error) {
	val, err := p.call(ctx, constant.ListFn, lua.LTTable, lua.LString(category), lua.LNumber(page))
	if err != nil {
		return nil, err
	}
	return itemsFromTable(p.id, val.(*lua.LTable))
}

func (p *Provider) Search(ctx context.Context, query string) ([]*media.Item, error) {
	val, err := p.call(ctx, constant.SearchFn, lua.LTTable, lua.LString(query))
	if err != nil {
		return nil, err
	}
	return itemsFromTable(p.id, val.(*lua.LTable))
}

func (p *Provider) Detail(ctx context.Context, ref string) (*media.Detail, error) {
	val, err := p.call(ctx, constant.DetailFn, lua.LTTable, lua.LString(ref))
	if err != nil {
		return nil, err
	}

	detail, err := detailFromTable(val.(*lua.LTable))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindResolve, p.id+".Detail", err)
	}
	detail.DetailURL = ref
	detail.Provider = p.id
	return detail, nil
}

// Close releases the Lua state.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Close()
}

// call executes a global Lua function under ctx and checks the type of its single return value.
func (p *Provider) call(ctx context.Context, fn string, retType lua.LValueType, args ...lua.LValue) (lua.LValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	luaFn := p.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is not defined", fn)
	}

	p.state.SetContext(ctx)
	defer p.state.RemoveContext()

	err := p.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Transient(p.id+"."+fn, ctx.Err())
		}
		return nil, apperr.Wrap(apperr.KindResolve, p.id+"."+fn, err)
	}

	retval := p.state.Get(-1)
	p.state.Pop(1)

	if retval.Type() != retType {
		return nil, apperr.Resolve(p.id+"."+fn, fmt.Sprintf("returned %s, expected %s", retval.Type(), retType))
	}

	return retval, nil
}
