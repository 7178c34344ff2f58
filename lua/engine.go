package lua

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

// ErrScriptNotFound is returned by EvalSHA when no script with the given
// SHA1 hash has been loaded into the engine.
var ErrScriptNotFound = errors.New("no script found for sha1 hash")

// Engine executes Lua scripts against decoded protocol values
type Engine struct {
	scripts sync.Map // map[string]string - SHA1 -> script content
}

// NewEngine creates a new Lua inspection engine
func NewEngine() *Engine {
	return &Engine{}
}

// Eval executes a Lua script against a decoded message. The message is
// exposed to the script as the global variable msg, converted to native
// Lua types, and a resp helper table provides access to the message's
// type name, rendered form and content digest. The script's return value
// is converted back to Go types.
func (e *Engine) Eval(script string, msg protocol.Value) (interface{}, error) {
	L := lua.NewState()
	defer L.Close()

	// Set up the message inspection environment
	e.setupInspectionAPI(L, msg)

	// Execute the script
	if err := L.DoString(script); err != nil {
		return nil, fmt.Errorf("script execution error: %w", err)
	}

	// Get the return value from the stack
	return e.convertLuaValue(L.Get(-1)), nil
}

// EvalSHA executes a cached Lua script by its SHA1 hash
func (e *Engine) EvalSHA(sha string, msg protocol.Value) (interface{}, error) {
	script, ok := e.scripts.Load(sha)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, sha)
	}
	return e.Eval(script.(string), msg)
}

// LoadScript caches a script and returns its SHA1 hash
func (e *Engine) LoadScript(script string) string {
	sha := fmt.Sprintf("%x", sha1.Sum([]byte(script)))
	e.scripts.Store(sha, script)
	return sha
}

// ScriptExists reports, for each hash, whether a script is cached under it
func (e *Engine) ScriptExists(hashes []string) []bool {
	results := make([]bool, len(hashes))
	for i, hash := range hashes {
		_, exists := e.scripts.Load(hash)
		results[i] = exists
	}
	return results
}

// ScriptFlush removes all cached scripts
func (e *Engine) ScriptFlush() {
	e.scripts.Range(func(key, value interface{}) bool {
		e.scripts.Delete(key)
		return true
	})
}

// setupInspectionAPI installs the msg global and the resp helper table
func (e *Engine) setupInspectionAPI(L *lua.LState, msg protocol.Value) {
	L.SetGlobal("msg", e.convertToLuaValue(L, msg))

	binding := &messageBinding{msg: msg}
	respTable := L.NewTable()
	L.SetFuncs(respTable, map[string]lua.LGFunction{
		"kind":   binding.kind,
		"render": binding.render,
		"hash":   binding.hash,
	})
	L.SetGlobal("resp", respTable)
}

// messageBinding closes over the message under inspection for the resp helpers
type messageBinding struct {
	msg protocol.Value
}

// kind returns the protocol type name of the message ("map", "push", ...)
func (b *messageBinding) kind(L *lua.LState) int {
	L.Push(lua.LString(b.msg.Type.String()))
	return 1
}

// render returns the indented multi-line rendering of the message
func (b *messageBinding) render(L *lua.LState) int {
	L.Push(lua.LString(protocol.Render(b.msg)))
	return 1
}

// hash returns the message's content digest as a 16-character hex string
func (b *messageBinding) hash(L *lua.LState) int {
	L.Push(lua.LString(fmt.Sprintf("%016x", b.msg.Sum64())))
	return 1
}

// convertToLuaValue converts a decoded protocol value to a Lua value.
// Strings, blobs and verbatim strings become Lua strings, numbers and
// floats become Lua numbers, null becomes nil. Arrays, sets and pushes
// become 1-indexed tables, maps and attributes become keyed tables.
// Errors become tables with err and code fields, following the usual
// Lua scripting convention for error replies.
func (e *Engine) convertToLuaValue(L *lua.LState, v protocol.Value) lua.LValue {
	switch v.Type {
	case protocol.TypeString, protocol.TypeBlobString, protocol.TypeVerbatimString:
		return lua.LString(v.Data)
	case protocol.TypeNumber:
		return lua.LNumber(v.Integer)
	case protocol.TypeFloat:
		return lua.LNumber(v.Float)
	case protocol.TypeBoolean:
		return lua.LBool(v.Bool)
	case protocol.TypeNull:
		return lua.LNil
	case protocol.TypeError, protocol.TypeBlobError:
		table := L.NewTable()
		table.RawSetString("err", lua.LString(v.String()))
		table.RawSetString("code", lua.LString(v.ErrorCode()))
		return table
	case protocol.TypeArray, protocol.TypeSet, protocol.TypePush:
		table := L.NewTable()
		for i, item := range v.Array {
			// Lua arrays are 1-indexed
			table.RawSetInt(i+1, e.convertToLuaValue(L, item))
		}
		return table
	case protocol.TypeMap, protocol.TypeAttribute:
		table := L.NewTable()
		for _, entry := range v.Entries {
			table.RawSetString(string(entry.Key.Data), e.convertToLuaValue(L, entry.Value))
		}
		return table
	default:
		return lua.LNil
	}
}

// convertLuaValue converts a Lua value returned by a script to a Go value
func (e *Engine) convertLuaValue(lv lua.LValue) interface{} {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case *lua.LTable:
		if e.isArrayLikeTable(v) {
			var result []interface{}
			v.ForEach(func(key, value lua.LValue) {
				result = append(result, e.convertLuaValue(value))
			})
			return result
		}
		result := make(map[string]interface{})
		v.ForEach(func(key, value lua.LValue) {
			result[key.String()] = e.convertLuaValue(value)
		})
		return result
	default:
		return nil
	}
}

// isArrayLikeTable reports whether a table has only consecutive integer
// keys starting at 1, so it can round-trip as a Go slice
func (e *Engine) isArrayLikeTable(table *lua.LTable) bool {
	length := table.Len()
	if length == 0 {
		return false
	}
	count := 0
	table.ForEach(func(key, value lua.LValue) {
		count++
	})
	return count == length
}
