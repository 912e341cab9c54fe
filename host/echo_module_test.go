package host

// echoModule assembles a minimal guest that implements the boundary ABI
// without a Go runtime. process ignores its request and returns a buffer
// holding response. A global counts live buffers: allocate and process
// increment it, deallocate decrements it, live_allocations reads it.
func echoModule(response string) []byte {
	const (
		i32 = 0x7f
		i64 = 0x7e

		opGlobalGet = 0x23
		opGlobalSet = 0x24
		opI32Const  = 0x41
		opI64Const  = 0x42
		opI32Add    = 0x6a
		opI32Sub    = 0x6b
		opEnd       = 0x0b

		requestAddr  = 1024
		responseAddr = 2048
	)

	bump := func(op byte) []byte {
		return []byte{opGlobalGet, 0, opI32Const, 1, op, opGlobalSet, 0}
	}

	types := vec(
		[]byte{0x60, 1, i32, 1, i32},
		[]byte{0x60, 2, i32, i32, 0},
		[]byte{0x60, 2, i32, i32, 1, i64},
		[]byte{0x60, 0, 1, i32},
	)
	funcs := vec([]byte{0}, []byte{1}, []byte{2}, []byte{3})
	memory := vec([]byte{0x00, 1})
	globals := vec([]byte{i32, 0x01, opI32Const, 0, opEnd})
	exports := vec(
		export("memory", 0x02, 0),
		export(ExportAllocate, 0x00, 0),
		export(ExportDeallocate, 0x00, 1),
		export(ExportProcess, 0x00, 2),
		export(ExportLiveAllocations, 0x00, 3),
	)

	packed := int64(responseAddr)<<32 | int64(len(response))
	code := vec(
		body(cat(bump(opI32Add), []byte{opI32Const}, sleb(requestAddr), []byte{opEnd})),
		body(cat(bump(opI32Sub), []byte{opEnd})),
		body(cat(bump(opI32Add), []byte{opI64Const}, sleb(packed), []byte{opEnd})),
		body([]byte{opGlobalGet, 0, opEnd}),
	)
	data := vec(cat([]byte{0x00, opI32Const}, sleb(responseAddr), []byte{opEnd}, uleb(uint64(len(response))), []byte(response)))

	return cat(
		[]byte("\x00asm\x01\x00\x00\x00"),
		section(1, types),
		section(3, funcs),
		section(5, memory),
		section(6, globals),
		section(7, exports),
		section(10, code),
		section(11, data),
	)
}

func section(id byte, content []byte) []byte {
	return cat([]byte{id}, uleb(uint64(len(content))), content)
}

func vec(items ...[]byte) []byte {
	return cat(append([][]byte{uleb(uint64(len(items)))}, items...)...)
}

func body(code []byte) []byte {
	fn := cat([]byte{0}, code) // no locals
	return cat(uleb(uint64(len(fn))), fn)
}

func export(name string, kind byte, index byte) []byte {
	return cat(uleb(uint64(len(name))), []byte(name), []byte{kind, index})
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}
