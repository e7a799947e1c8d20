// Package scraper compiles and runs user Lua provider scripts.
package scraper

import (
	"bytes"
	"sync"

	"github.com/raidenhub/phim/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// PreCompileAndLoad runs the script at scriptPath in L. The compiled prototype is cached per path,
// so later states skip parsing.
func PreCompileAndLoad(L *lua.LState, scriptPath string) error {
	if cached, ok := bytecodeCache.Load(scriptPath); ok {
		L.Push(L.NewFunctionFromProto(cached.(*lua.FunctionProto)))
		return L.PCall(0, lua.MultRet, nil)
	}

	source, err := filesystem.API().ReadFile(scriptPath)
	if err != nil {
		return err
	}

	chunk, err := parse.Parse(bytes.NewReader(source), scriptPath)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, scriptPath)
	if err != nil {
		return err
	}

	bytecodeCache.Store(scriptPath, proto)

	L.Push(L.NewFunctionFromProto(proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Forget drops the cached prototype of scriptPath, after the script was replaced or removed.
func Forget(scriptPath string) {
	bytecodeCache.Delete(scriptPath)
}
