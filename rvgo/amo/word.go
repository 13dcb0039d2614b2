package amo

// Machine word helpers. All arithmetic is on the 64-bit word and wraps.

type U64 = uint64

func toU64(v uint8) U64 { return uint64(v) }

func u32Mask() uint64 {
	return 0xFFFF_FFFF
}

func add64(x, y uint64) uint64 {
	return x + y
}

func and64(x, y uint64) uint64 {
	return x & y
}

func or64(x, y uint64) uint64 {
	return x | y
}

func xor64(x, y uint64) uint64 {
	return x ^ y
}

func shl64(x, y uint64) uint64 {
	return y << x
}

func shr64(x, y uint64) uint64 {
	return y >> x
}

func lt64(x, y uint64) uint64 {
	if x < y {
		return 1
	} else {
		return 0
	}
}

func gt64(x, y uint64) uint64 {
	if x > y {
		return 1
	} else {
		return 0
	}
}

func slt64(x, y uint64) uint64 {
	if int64(x) < int64(y) {
		return 1
	} else {
		return 0
	}
}

func sgt64(x, y uint64) uint64 {
	if int64(x) > int64(y) {
		return 1
	} else {
		return 0
	}
}

func eq64(x, y uint64) uint64 {
	if x == y {
		return 1
	} else {
		return 0
	}
}

func iszero64(x uint64) bool {
	return x == 0
}
