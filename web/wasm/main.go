//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-synth/internal/webdemo"
)

var (
	demo  *webdemo.Demo
	funcs []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		d, err := webdemo.NewDemo(sr, nil)
		if err != nil {
			return err.Error()
		}
		demo = d
		return js.Null()
	}))

	api.Set("keys", export(func(args []js.Value) any {
		if demo == nil {
			return js.Global().Get("Array").New(0)
		}
		keys := demo.Keys()
		arr := js.Global().Get("Array").New(len(keys))
		for i, k := range keys {
			item := js.Global().Get("Object").New()
			item.Set("note", k.Note)
			item.Set("black", k.Black)
			item.Set("label", k.Label)
			item.Set("white", k.White)
			item.Set("shortcut", k.Shortcut)
			arr.SetIndex(i, item)
		}
		return arr
	}))

	api.Set("setInstrument", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return js.Null()
		}
		return demo.SetInstrument(args[0].String())
	}))

	api.Set("setVolume", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return js.Null()
		}
		if _, err := demo.SetVolume(args[0].String()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("keyDown", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return false
		}
		repeat := len(args) > 1 && args[1].Bool()
		return demo.KeyDown(args[0].String(), repeat)
	}))

	api.Set("keyUp", export(func(args []js.Value) any {
		if demo != nil && len(args) > 0 {
			demo.KeyUp(args[0].String())
		}
		return js.Null()
	}))

	api.Set("pointerDown", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return false
		}
		return demo.PointerDown(args[0].String())
	}))

	api.Set("pointerUp", export(func(args []js.Value) any {
		if demo != nil && len(args) > 0 {
			demo.PointerUp(args[0].String())
		}
		return js.Null()
	}))

	api.Set("pointerOut", export(func(args []js.Value) any {
		if demo != nil && len(args) > 0 {
			demo.PointerOut(args[0].String())
		}
		return js.Null()
	}))

	api.Set("pressed", export(func(args []js.Value) any {
		if demo == nil {
			return js.Global().Get("Array").New(0)
		}
		notes := demo.Pressed()
		arr := js.Global().Get("Array").New(len(notes))
		for i, n := range notes {
			arr.SetIndex(i, n)
		}
		return arr
	}))

	api.Set("resume", export(func(args []js.Value) any {
		if demo == nil {
			return js.Null()
		}
		if err := demo.Resume(); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("suspend", export(func(args []js.Value) any {
		if demo == nil {
			return js.Null()
		}
		if err := demo.Suspend(); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		buf := make([]float32, n)
		demo.Render(buf)
		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}
		return arr
	}))

	api.Set("peakDB", export(func(args []js.Value) any {
		if demo == nil {
			return js.Null()
		}
		return demo.PeakDB()
	}))

	api.Set("responseCurve", export(func(args []js.Value) any {
		if demo == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := 0; i < input.Length(); i++ {
			freqs[i] = input.Index(i).Float()
		}
		resp := demo.ResponseCurveDB(freqs)
		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}
		return arr
	}))

	api.Set("activeVoices", export(func(args []js.Value) any {
		if demo == nil {
			return 0
		}
		return demo.ActiveVoices()
	}))

	js.Global().Set("AlgoSynthPiano", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
